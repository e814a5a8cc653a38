// Package experiment implements the experiment container validators:
// summarized experiments and their derived flavors
// (ranged/single-cell/spatial/vcf), plus the multi-sample dataset that
// bundles several of them against a shared sample table.
package experiment

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/jsonval"
	"github.com/takane-go/takane/pkg/types"
)

// dirExists reports whether parent/name exists and is a directory.
func dirExists(parent, name string) (string, bool) {
	full := filepath.Join(parent, name)
	info, err := os.Stat(full)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return full, true
}

func countDirEntries(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, types.WrapError(types.ErrKindStructure, err, "could not list '%s'", dir)
	}
	return len(entries), nil
}

// readNamesJSON parses dir/names.json as a non-empty-string, duplicate-
// free array, mirroring the check_names_json helper every "named
// subdirectory of objects" pattern (assays/, reduced_dimensions/,
// alternative_experiments/, experiments/) relies on.
func readNamesJSON(dir string) ([]string, error) {
	path := filepath.Join(dir, "names.json")
	root, err := jsonval.ParseFile(path)
	if err != nil {
		return nil, types.WrapError(types.ErrKindStructure, err, "could not read '%s'", path)
	}
	if root.Kind() != jsonval.KindArray {
		return nil, types.NewError(types.ErrKindStructure, "'%s' should contain a JSON array", path)
	}
	names, err := root.StringArray()
	if err != nil {
		return nil, types.WrapError(types.ErrKindStructure, err, "'%s' should contain an array of strings", path)
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, types.NewError(types.ErrKindValue, "'%s' names should not be empty strings", path)
		}
		if seen[name] {
			return nil, types.NewError(types.ErrKindValue, "'%s' contains duplicated name '%s'", path, name)
		}
		seen[name] = true
	}
	return names, nil
}

// validateNamedEntries implements the "names.json + #entries = #names+1"
// ownership pattern: dir must contain names.json plus exactly one
// subdirectory "0".."n-1", each checked by entryCheck.
func validateNamedEntries(dir string, entryCheck func(index int, entryPath string) error) (int, error) {
	names, err := readNamesJSON(dir)
	if err != nil {
		return 0, err
	}
	n := len(names)
	for i := 0; i < n; i++ {
		if err := entryCheck(i, filepath.Join(dir, strconv.Itoa(i))); err != nil {
			return 0, err
		}
	}
	total, err := countDirEntries(dir)
	if err != nil {
		return 0, err
	}
	if total-1 != n {
		return 0, types.NewError(types.ErrKindStructure, "'%s' contains more objects than expected", dir)
	}
	return n, nil
}

func validateChildOfInterface(path, iface string, opts types.Options) error {
	return dispatch.ValidateChild(path, "", iface, opts)
}
