// Package delayed implements the delayed_array validator: a
// chihaya-style operation graph stored in array.h5, whose leaf "custom
// takane seed array" nodes reference seeds/<i>/ subdirectories that must
// themselves be valid objects matching the shape and element type the
// graph declares for them.
package delayed

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/metadata"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateDelayedArray walks the operation graph, cross-checks every
// custom-seed reference against its seeds/<i>/ directory, and confirms
// the directory holds exactly 1 + max(index) entries.
func ValidateDelayedArray(path string, md types.ObjectMetadata, opts types.Options) error {
	opts = opts.WithDefaults()

	obj, err := md.TypedObject("delayed_array")
	if err != nil {
		return err
	}
	verStr, err := types.StringField(obj, "version", "delayed_array")
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(verStr)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported delayed_array version %d", v.Major)
	}

	f, g, err := hdf5x.OpenPayload(path, "array.h5", "delayed_array")
	if err != nil {
		return err
	}
	defer f.Close()

	var refs []seedRef
	if _, err := walkGraph(g, opts, &refs); err != nil {
		return err
	}

	maxIndex := int64(-1)
	for _, ref := range refs {
		if err := checkSeed(path, ref, opts); err != nil {
			return err
		}
		if ref.Index > maxIndex {
			maxIndex = ref.Index
		}
	}

	return checkSeedDirectory(filepath.Join(path, "seeds"), maxIndex+1)
}

// HeightDelayedArray reports the graph's leading extent.
func HeightDelayedArray(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := graphDimensions(path, opts)
	if err != nil {
		return 0, err
	}
	if len(dims) == 0 {
		return 0, types.NewError(types.ErrKindValue, "delayed array should have at least one dimension")
	}
	return dims[0], nil
}

// DimensionsDelayedArray reports the graph's full extent vector.
func DimensionsDelayedArray(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return graphDimensions(path, opts)
}

func graphDimensions(path string, opts types.Options) ([]int64, error) {
	opts = opts.WithDefaults()
	f, g, err := hdf5x.OpenPayload(path, "array.h5", "delayed_array")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var refs []seedRef
	return walkGraph(g, opts, &refs)
}

// checkSeed validates the seeds/<i>/ directory a custom-seed node points
// at. A sub-validator registered under the node's array type takes over
// the whole check when present (Options.DelayedArrayOptions).
func checkSeed(path string, ref seedRef, opts types.Options) error {
	seedPath := filepath.Join(path, "seeds", strconv.FormatInt(ref.Index, 10))
	if custom, ok := opts.DelayedArrayOptions.ArrayValidators[CustomSeedArrayType]; ok {
		return custom(seedPath, ref.Dims, ref.ElemType, opts)
	}

	if err := dispatch.Validate(seedPath, opts); err != nil {
		return err
	}

	dims, err := dispatch.Dimensions(seedPath, opts)
	if err != nil {
		return err
	}
	if len(dims) != len(ref.Dims) {
		return types.NewError(types.ErrKindValue, "seed %d has dimensionality %d, graph declares %d", ref.Index, len(dims), len(ref.Dims))
	}
	for d := range dims {
		if dims[d] != ref.Dims[d] {
			return types.NewError(types.ErrKindValue, "seed %d has extent %d on dimension %d, graph declares %d", ref.Index, dims[d], d, ref.Dims[d])
		}
	}

	md, err := metadata.Read(seedPath)
	if err != nil {
		return err
	}
	switch md.Type {
	case "dense_array":
		return checkSeedElementType(seedPath, "array.h5", "dense_array", ref)
	case "compressed_sparse_matrix":
		return checkSeedElementType(seedPath, "matrix.h5", "compressed_sparse_matrix", ref)
	}
	return nil
}

func checkSeedElementType(seedPath, filename, groupPath string, ref seedRef) error {
	f, g, err := hdf5x.OpenPayload(seedPath, filename, groupPath)
	if err != nil {
		return err
	}
	defer f.Close()
	got, err := fetchStringAttr(g, "type")
	if err != nil {
		return err
	}
	if got != ref.ElemType {
		return types.NewError(types.ErrKindValue, "seed %d stores '%s' values, graph declares '%s'", ref.Index, got, ref.ElemType)
	}
	return nil
}

// checkSeedDirectory confirms seeds/ holds exactly want entries, all of
// them the numbered subdirectories the graph references. With no
// references at all, the directory may be absent entirely.
func checkSeedDirectory(dir string, want int64) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if want == 0 && os.IsNotExist(err) {
			return nil
		}
		return types.WrapError(types.ErrKindStructure, err, "could not list the 'seeds' directory")
	}
	if int64(len(entries)) != want {
		return types.NewError(types.ErrKindValue, "'seeds' directory contains %d entries, graph references %d", len(entries), want)
	}
	return nil
}
