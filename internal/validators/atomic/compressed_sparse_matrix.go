package atomic

import (
	"strconv"

	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateCompressedSparseMatrix implements the compressed_sparse_matrix
// validator: CSC/CSR layout, a monotone `indptr` partitioning
// `data`/`indices` into per-primary-dimension slices whose `indices` are
// strictly increasing and within range.
func ValidateCompressedSparseMatrix(path string, md types.ObjectMetadata, opts types.Options) error {
	f, g, err := hdf5x.OpenPayload(path, "matrix.h5", "compressed_sparse_matrix")
	if err != nil {
		return err
	}
	defer f.Close()
	return validateSparseGroup(g, opts)
}

// HeightCompressedSparseMatrix returns shape[0].
func HeightCompressedSparseMatrix(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	shape, err := DimensionsCompressedSparseMatrix(path, md, opts)
	if err != nil {
		return 0, err
	}
	return shape[0], nil
}

// DimensionsCompressedSparseMatrix returns the `shape` dataset's two
// values.
func DimensionsCompressedSparseMatrix(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "matrix.h5", "compressed_sparse_matrix")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	shapeDS, err := hdf5x.RequireDataset(g, "shape")
	if err != nil {
		return nil, err
	}
	return readShape(shapeDS, opts.WithDefaults().HDF5BufferSize)
}

func readShape(ds hdf5x.Dataset, blockSize int) ([]int64, error) {
	if ds.Len() != 2 {
		return nil, types.NewError(types.ErrKindValue, "'shape' should have length 2, got %d", ds.Len())
	}
	var shape []int64
	if err := ds.IterateInt(blockSize, func(b []int64) error { shape = append(shape, b...); return nil }); err != nil {
		return nil, err
	}
	return shape, nil
}

func validateSparseGroup(g hdf5x.Group, opts types.Options) error {
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
		return types.NewError(types.ErrKindVersion, "unsupported compressed_sparse_matrix version %d", v.Major)
	}

	layoutStr, err := primitives.FetchStringAttr(g, "layout")
	if err != nil {
		return err
	}
	var primaryIsCol bool
	switch layoutStr {
	case "CSC":
		primaryIsCol = true
	case "CSR":
		primaryIsCol = false
	default:
		return types.NewError(types.ErrKindValue, "unknown sparse matrix layout '%s'", layoutStr)
	}

	typeStr, err := primitives.FetchStringAttr(g, "type")
	if err != nil {
		return err
	}
	elemType, err := ParseElementType(typeStr, false)
	if err != nil {
		return err
	}

	shapeDS, err := hdf5x.RequireDataset(g, "shape")
	if err != nil {
		return err
	}
	shape, err := readShape(shapeDS, opts.HDF5BufferSize)
	if err != nil {
		return err
	}
	var primary, secondary int64
	if primaryIsCol {
		primary, secondary = shape[1], shape[0]
	} else {
		primary, secondary = shape[0], shape[1]
	}

	data, err := hdf5x.RequireDataset(g, "data")
	if err != nil {
		return err
	}
	if err := ValidateNumericClass(data, elemType); err != nil {
		return err
	}
	if _, _, _, _, err := ResolvePlaceholder(data, elemType); err != nil {
		return err
	}

	indices, err := hdf5x.RequireDataset(g, "indices")
	if err != nil {
		return err
	}
	indptr, err := hdf5x.RequireDataset(g, "indptr")
	if err != nil {
		return err
	}
	if indices.Len() != data.Len() {
		return types.NewError(types.ErrKindValue, "'indices' should have the same length as 'data'")
	}
	if indptr.Len() != primary+1 {
		return types.NewError(types.ErrKindValue, "'indptr' should have length %d, got %d", primary+1, indptr.Len())
	}

	var indptrVals []int64
	if err := indptr.IterateInt(opts.HDF5BufferSize, func(b []int64) error { indptrVals = append(indptrVals, b...); return nil }); err != nil {
		return err
	}
	if indptrVals[0] != 0 {
		return types.NewError(types.ErrKindValue, "'indptr[0]' should be 0, got %d", indptrVals[0])
	}
	if indptrVals[len(indptrVals)-1] != data.Len() {
		return types.NewError(types.ErrKindValue, "'indptr' should end at %d (the number of stored values), got %d", data.Len(), indptrVals[len(indptrVals)-1])
	}
	for i := 1; i < len(indptrVals); i++ {
		if indptrVals[i] < indptrVals[i-1] {
			return types.NewError(types.ErrKindValue, "'indptr' must be non-decreasing, violated at position %d", i)
		}
	}

	var indicesVals []int64
	if err := indices.IterateInt(opts.HDF5BufferSize, func(b []int64) error { indicesVals = append(indicesVals, b...); return nil }); err != nil {
		return err
	}
	slice := 0
	for slice < len(indptrVals)-1 {
		lo, hi := indptrVals[slice], indptrVals[slice+1]
		var prev int64 = -1
		for j := lo; j < hi; j++ {
			idx := indicesVals[j]
			if idx < 0 || idx >= secondary {
				return types.NewError(types.ErrKindValue, "index %d in slice %d is out of range [0, %d)", idx, slice, secondary)
			}
			if idx <= prev {
				return types.NewError(types.ErrKindValue, "indices in slice %d are not strictly increasing", slice)
			}
			prev = idx
		}
		slice++
	}

	if namesGroup, ok := g.Group("names"); ok {
		for d, dim := range shape {
			ds, ok := namesGroup.Dataset(strconv.Itoa(d))
			if !ok {
				continue
			}
			if err := primitives.ValidateNames(ds, dim, opts.HDF5BufferSize); err != nil {
				return types.WrapError(types.ErrKindValue, err, "dimension name %d", d)
			}
		}
	}

	return nil
}
