package hdf5x

import (
	"path/filepath"

	"github.com/takane-go/takane/pkg/types"
)

// OpenPayload opens dir/filename as an HDF5 file and resolves groupPath
// within it, returning both the open File (so the caller can defer
// Close) and the resolved Group. Failures are reported as
// ErrKindStructure, matching the "required file/group is missing"
// category every leaf validator needs.
func OpenPayload(dir, filename, groupPath string) (File, Group, error) {
	full := filepath.Join(dir, filename)
	f, err := Open(full)
	if err != nil {
		return nil, nil, types.WrapError(types.ErrKindStructure, err, "could not open '%s'", full)
	}
	g, err := f.OpenGroup(groupPath)
	if err != nil {
		f.Close()
		return nil, nil, types.WrapError(types.ErrKindStructure, err, "expected a '%s' group in '%s'", groupPath, full)
	}
	return f, g, nil
}

// RequireDataset resolves name within g, failing with ErrKindStructure if
// absent.
func RequireDataset(g Group, name string) (Dataset, error) {
	ds, ok := g.Dataset(name)
	if !ok {
		return nil, types.NewError(types.ErrKindStructure, "expected a '%s' dataset", name)
	}
	return ds, nil
}

// RequireGroup resolves name within g, failing with ErrKindStructure if
// absent.
func RequireGroup(g Group, name string) (Group, error) {
	sub, ok := g.Group(name)
	if !ok {
		return nil, types.NewError(types.ErrKindStructure, "expected a '%s' group", name)
	}
	return sub, nil
}
