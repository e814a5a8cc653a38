package composite

import (
	"os"
	"path/filepath"
)

// dirExists reports whether parent/name exists and is a directory,
// returning its joined path for convenience.
func dirExists(parent, name string) (string, bool) {
	full := filepath.Join(parent, name)
	info, err := os.Stat(full)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return full, true
}

// readDirNames lists the direct child entry names of dir.
func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
