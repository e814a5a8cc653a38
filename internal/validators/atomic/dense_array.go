package atomic

import (
	"strconv"

	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateDenseArray implements the dense_array validator: an
// N-dimensional `data` dataset under array.h5/dense_array, typed
// integer/boolean/number/string, with an optional `names` subgroup
// giving per-dimension dimnames and an optional `transposed` flag that
// swaps which reported dimension is the "height".
func ValidateDenseArray(path string, md types.ObjectMetadata, opts types.Options) error {
	f, g, err := hdf5x.OpenPayload(path, "array.h5", "dense_array")
	if err != nil {
		return err
	}
	defer f.Close()
	return validateDenseArrayGroup(g, opts)
}

// HeightDenseArray returns the leading reported dimension (or, when
// transposed, the last).
func HeightDenseArray(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := DimensionsDenseArray(path, md, opts)
	if err != nil {
		return 0, err
	}
	transposed, err := isTransposed(path, opts)
	if err != nil {
		return 0, err
	}
	if len(dims) == 0 {
		return 0, types.NewError(types.ErrKindValue, "dense_array must have at least one dimension")
	}
	if transposed {
		return dims[len(dims)-1], nil
	}
	return dims[0], nil
}

// DimensionsDenseArray returns the reported dimension vector: HDF5 stores
// dimensions fastest-varying last, so the reported vector is the reverse
// of the on-disk storage order.
func DimensionsDenseArray(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "array.h5", "dense_array")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := hdf5x.RequireDataset(g, "data")
	if err != nil {
		return nil, err
	}
	return reverseDims(data.Dims()), nil
}

func isTransposed(path string, opts types.Options) (bool, error) {
	f, g, err := hdf5x.OpenPayload(path, "array.h5", "dense_array")
	if err != nil {
		return false, err
	}
	defer f.Close()
	a, ok := g.Attr("transposed")
	if !ok {
		return false, nil
	}
	v, ok := a.AsInt()
	if !ok {
		return false, types.NewError(types.ErrKindValue, "'transposed' attribute should be an integer")
	}
	return v != 0, nil
}

func reverseDims(dims []int64) []int64 {
	out := make([]int64, len(dims))
	for i, d := range dims {
		out[len(dims)-1-i] = d
	}
	return out
}

func validateDenseArrayGroup(g hdf5x.Group, opts types.Options) error {
	opts = opts.WithDefaults()

	ver, err := primitives.FetchStringAttr(g, "version")
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(ver)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported dense_array version %d", v.Major)
	}

	typeStr, err := primitives.FetchStringAttr(g, "type")
	if err != nil {
		return err
	}
	elemType, err := ParseElementType(typeStr, true)
	if err != nil {
		return err
	}

	data, err := hdf5x.RequireDataset(g, "data")
	if err != nil {
		return err
	}
	storageDims := data.Dims()
	if len(storageDims) == 0 {
		return types.NewError(types.ErrKindValue, "'data' dataset must have at least one dimension")
	}

	if elemType == String {
		hasPH, phStr, _, _, err := ResolvePlaceholder(data, elemType)
		if err != nil {
			return err
		}
		if err := ValidateStringValues(data, primitives.FormatNone, hasPH, phStr, opts.HDF5BufferSize); err != nil {
			return err
		}
	} else {
		if err := ValidateNumericClass(data, elemType); err != nil {
			return err
		}
		if _, _, _, _, err := ResolvePlaceholder(data, elemType); err != nil {
			return err
		}
	}

	reported := reverseDims(storageDims)
	if namesGroup, ok := g.Group("names"); ok {
		for d := range reported {
			dsName := strconv.Itoa(d)
			ds, ok := namesGroup.Dataset(dsName)
			if !ok {
				continue
			}
			if err := primitives.ValidateNames(ds, reported[d], opts.HDF5BufferSize); err != nil {
				return types.WrapError(types.ErrKindValue, err, "dimension name %d", d)
			}
		}
	}

	if a, ok := g.Attr("transposed"); ok {
		if _, ok := a.AsInt(); !ok {
			return types.NewError(types.ErrKindValue, "'transposed' attribute should be an integer")
		}
	}

	return nil
}
