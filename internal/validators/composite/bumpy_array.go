package composite

import (
	"fmt"
	"path/filepath"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateBumpyAtomicArray implements the bumpy_atomic_array validator.
func ValidateBumpyAtomicArray(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateBumpyArray(path, opts, "bumpy_atomic_array", "atomic_vector", "")
	return err
}

// HeightBumpyAtomicArray returns dimensions[0].
func HeightBumpyAtomicArray(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := bumpyArrayDims(path, "bumpy_atomic_array")
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// DimensionsBumpyAtomicArray returns the declared shape.
func DimensionsBumpyAtomicArray(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return bumpyArrayDims(path, "bumpy_atomic_array")
}

// ValidateBumpyDataFrameArray implements the bumpy_data_frame_array
// validator.
func ValidateBumpyDataFrameArray(path string, md types.ObjectMetadata, opts types.Options) error {
	_, err := validateBumpyArray(path, opts, "bumpy_data_frame_array", "", types.InterfaceDataFrame)
	return err
}

// HeightBumpyDataFrameArray returns dimensions[0].
func HeightBumpyDataFrameArray(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := bumpyArrayDims(path, "bumpy_data_frame_array")
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// DimensionsBumpyDataFrameArray returns the declared shape.
func DimensionsBumpyDataFrameArray(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return bumpyArrayDims(path, "bumpy_data_frame_array")
}

func bumpyArrayDims(path, typeName string) ([]int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "partitions.h5", typeName)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := hdf5x.RequireDataset(g, "dimensions")
	if err != nil {
		return nil, err
	}
	return readUint64Values(ds, 10000)
}

// validateBumpyArray implements the bumpy-array contract: a partitioned N-dimensional
// array of objects, either densely enumerated in row-major order or
// sparsely indexed by per-dimension coordinate datasets.
func validateBumpyArray(path string, opts types.Options, typeName, wantChildType, wantChildIface string) ([]int64, error) {
	opts = opts.WithDefaults()

	f, g, err := hdf5x.OpenPayload(path, "partitions.h5", typeName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ver, err := primitives.FetchStringAttr(g, "version")
	if err != nil {
		return nil, err
	}
	v, err := primitives.ParseVersion(ver)
	if err != nil {
		return nil, err
	}
	if v.Major != 1 {
		return nil, types.NewError(types.ErrKindVersion, "unsupported %s version %d", typeName, v.Major)
	}

	dimsDS, err := hdf5x.RequireDataset(g, "dimensions")
	if err != nil {
		return nil, err
	}
	dims, err := readUint64Values(dimsDS, opts.HDF5BufferSize)
	if err != nil {
		return nil, err
	}
	if len(dims) == 0 {
		return nil, types.NewError(types.ErrKindValue, "'dimensions' must have at least one entry")
	}
	product := int64(1)
	for _, d := range dims {
		if d < 0 {
			return nil, types.NewError(types.ErrKindValue, "'dimensions' entries must be non-negative")
		}
		product *= d
	}

	lengthsDS, err := hdf5x.RequireDataset(g, "lengths")
	if err != nil {
		return nil, err
	}
	if !lengthsDS.FitsUnsignedInt(64) {
		return nil, types.NewError(types.ErrKindValue, "'lengths' dataset should be an unsigned integer type")
	}
	numPartitions := lengthsDS.Len()

	var total int64
	if err := lengthsDS.IterateInt(opts.HDF5BufferSize, func(block []int64) error {
		for _, v := range block {
			if v < 0 {
				return types.NewError(types.ErrKindValue, "'lengths' entries must be non-negative")
			}
			total += v
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if indices, ok := g.Group("indices"); ok {
		if err := validateSparseBumpyIndices(indices, dims, numPartitions); err != nil {
			return nil, err
		}
	} else {
		if numPartitions != product {
			return nil, types.NewError(types.ErrKindValue, "dense bumpy array needs %d partitions (product of dimensions), got %d", product, numPartitions)
		}
	}

	if err := validateBumpyNames(g, dims); err != nil {
		return nil, err
	}

	childPath := filepath.Join(path, "concatenated")
	if err := dispatch.ValidateChild(childPath, wantChildType, wantChildIface, opts); err != nil {
		return nil, err
	}
	childHeight, err := dispatch.Height(childPath, opts)
	if err != nil {
		return nil, err
	}
	if childHeight != total {
		return nil, types.NewError(types.ErrKindValue, "concatenated child has height %d but partition lengths sum to %d", childHeight, total)
	}

	if err := validateSiblingAnnotations(path, numPartitions, opts); err != nil {
		return nil, err
	}

	return dims, nil
}

// validateSparseBumpyIndices checks the "indices" group's per-dimension
// uint64 coordinate datasets: same length as lengths, strictly
// increasing within each dataset, bounded by the declared extent, and
// no two partitions sharing the same coordinate tuple across datasets.
func validateSparseBumpyIndices(indices hdf5x.Group, dims []int64, numPartitions int64) error {
	ndim := len(dims)
	coordLists := make([][]int64, ndim)
	for d := 0; d < ndim; d++ {
		ds, err := hdf5x.RequireDataset(indices, fmt.Sprintf("%d", d))
		if err != nil {
			return err
		}
		if ds.Len() != numPartitions {
			return types.NewError(types.ErrKindValue, "indices/%d should have length %d, got %d", d, numPartitions, ds.Len())
		}
		vals, err := readUint64Values(ds, 10000)
		if err != nil {
			return err
		}
		prev := int64(-1)
		for i, v := range vals {
			if v < 0 || v >= dims[d] {
				return types.NewError(types.ErrKindValue, "indices/%d entry %d out of bounds [0, %d)", d, i, dims[d])
			}
			if v <= prev {
				return types.NewError(types.ErrKindValue, "indices/%d must be strictly increasing", d)
			}
			prev = v
		}
		coordLists[d] = vals
	}

	seen := make(map[string]bool, numPartitions)
	for i := int64(0); i < numPartitions; i++ {
		key := ""
		for d := 0; d < ndim; d++ {
			key += fmt.Sprintf("%d,", coordLists[d][i])
		}
		if seen[key] {
			return types.NewError(types.ErrKindValue, "partition %d duplicates a coordinate tuple already seen", i)
		}
		seen[key] = true
	}
	return nil
}

// validateBumpyNames checks the optional "names" subgroup: one string
// dataset per dimension index, length equal to that dimension's extent.
func validateBumpyNames(g hdf5x.Group, dims []int64) error {
	namesGroup, ok := g.Group("names")
	if !ok {
		return nil
	}
	for d, extent := range dims {
		ds, err := hdf5x.RequireDataset(namesGroup, fmt.Sprintf("%d", d))
		if err != nil {
			return err
		}
		if err := primitives.ValidateNames(ds, extent, 10000); err != nil {
			return types.WrapError(types.ErrKindValue, err, "names/%d", d)
		}
	}
	return nil
}

func readUint64Values(ds hdf5x.Dataset, blockSize int) ([]int64, error) {
	if !ds.FitsUnsignedInt(64) {
		return nil, types.NewError(types.ErrKindValue, "expected an unsigned integer dataset")
	}
	out := make([]int64, 0, ds.Len())
	err := ds.IterateInt(blockSize, func(block []int64) error {
		out = append(out, block...)
		return nil
	})
	return out, err
}
