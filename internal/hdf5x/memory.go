package hdf5x

import "path/filepath"

// memoryFiles maps cleaned file paths to in-memory roots installed via
// InstallMemoryFile. Open consults this table before touching the real
// backend, which is how the test suite (and any embedding tool that wants
// to validate synthetic objects without writing HDF5 bytes) substitutes
// fake payload files for on-disk ones. The table is plain process-wide
// configuration, set up before validation starts, like the dispatch
// registries.
var memoryFiles = map[string]*FakeGroup{}

// InstallMemoryFile registers an in-memory root group to be returned by
// Open(path) instead of reading the file system. It returns a function
// that removes the registration again.
func InstallMemoryFile(path string, root *FakeGroup) func() {
	key := filepath.Clean(path)
	memoryFiles[key] = root
	return func() { delete(memoryFiles, key) }
}

func lookupMemoryFile(path string) (File, bool) {
	root, ok := memoryFiles[filepath.Clean(path)]
	if !ok {
		return nil, false
	}
	return NewFakeFile(root), true
}
