package delayed

import (
	"strconv"

	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/pkg/types"
)

// CustomSeedArrayType is the delayed-array node type under which takane
// stores references to out-of-graph seed directories.
const CustomSeedArrayType = "custom takane seed array"

// seedRef is one "custom takane seed array" node found while walking the
// operation graph: the seeds/<Index> directory it points at, plus the
// shape and element type the graph expects that directory to have.
type seedRef struct {
	Index    int64
	Dims     []int64
	ElemType string
}

// walkGraph validates the chihaya-style operation graph rooted at g and
// returns the dimensions of its result, collecting every custom-seed
// reference encountered. Operation semantics beyond shape propagation are
// the business of the pluggable sub-validator; this walker only
// models what shape flows where, which is all the seed cross-checks need.
func walkGraph(g hdf5x.Group, opts types.Options, refs *[]seedRef) ([]int64, error) {
	kind, err := fetchStringAttr(g, "delayed_type")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "array":
		return walkArray(g, opts, refs)
	case "operation":
		return walkOperation(g, opts, refs)
	default:
		return nil, types.NewError(types.ErrKindValue, "unknown 'delayed_type' value '%s'", kind)
	}
}

func walkArray(g hdf5x.Group, opts types.Options, refs *[]seedRef) ([]int64, error) {
	arrayType, err := fetchStringAttr(g, "delayed_array")
	if err != nil {
		return nil, err
	}
	switch arrayType {
	case CustomSeedArrayType:
		return walkCustomSeed(g, opts, refs)
	case "constant array":
		ds, err := hdf5x.RequireDataset(g, "dimensions")
		if err != nil {
			return nil, err
		}
		return readIntValues(ds, opts.HDF5BufferSize)
	case "dense array":
		ds, err := hdf5x.RequireDataset(g, "data")
		if err != nil {
			return nil, err
		}
		return reverseDims(ds.Dims()), nil
	case "sparse matrix":
		ds, err := hdf5x.RequireDataset(g, "shape")
		if err != nil {
			return nil, err
		}
		return readIntValues(ds, opts.HDF5BufferSize)
	default:
		// Unrecognized array nodes must at least declare their shape so
		// downstream checks remain possible; deep validation is left to a
		// registered sub-validator (invoked at the seed layer, not here).
		ds, err := hdf5x.RequireDataset(g, "dimensions")
		if err != nil {
			return nil, types.NewError(types.ErrKindDispatch, "no handler for delayed array type '%s'", arrayType)
		}
		return readIntValues(ds, opts.HDF5BufferSize)
	}
}

func walkCustomSeed(g hdf5x.Group, opts types.Options, refs *[]seedRef) ([]int64, error) {
	idxDS, err := hdf5x.RequireDataset(g, "index")
	if err != nil {
		return nil, err
	}
	idx, err := readScalarInt(idxDS, opts.HDF5BufferSize)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, types.NewError(types.ErrKindValue, "'index' must be non-negative")
	}
	dimDS, err := hdf5x.RequireDataset(g, "dimensions")
	if err != nil {
		return nil, err
	}
	dims, err := readIntValues(dimDS, opts.HDF5BufferSize)
	if err != nil {
		return nil, err
	}
	elemType, err := fetchStringAttr(g, "type")
	if err != nil {
		return nil, err
	}
	switch elemType {
	case "integer", "boolean", "number", "string":
	default:
		return nil, types.NewError(types.ErrKindValue, "unknown 'type' value '%s' on custom seed array", elemType)
	}
	*refs = append(*refs, seedRef{Index: idx, Dims: dims, ElemType: elemType})
	return dims, nil
}

func walkOperation(g hdf5x.Group, opts types.Options, refs *[]seedRef) ([]int64, error) {
	opType, err := fetchStringAttr(g, "delayed_operation")
	if err != nil {
		return nil, err
	}
	switch opType {
	case "transpose":
		seedDims, err := walkSeed(g, opts, refs)
		if err != nil {
			return nil, err
		}
		permDS, err := hdf5x.RequireDataset(g, "permutation")
		if err != nil {
			return nil, err
		}
		perm, err := readIntValues(permDS, opts.HDF5BufferSize)
		if err != nil {
			return nil, err
		}
		if len(perm) != len(seedDims) {
			return nil, types.NewError(types.ErrKindValue, "'permutation' length should equal the seed's dimensionality")
		}
		out := make([]int64, len(perm))
		for i, p := range perm {
			if p < 0 || p >= int64(len(seedDims)) {
				return nil, types.NewError(types.ErrKindValue, "'permutation' contains an out-of-range dimension index")
			}
			out[i] = seedDims[p]
		}
		return out, nil

	case "subset":
		seedDims, err := walkSeed(g, opts, refs)
		if err != nil {
			return nil, err
		}
		idxGroup, err := hdf5x.RequireGroup(g, "index")
		if err != nil {
			return nil, err
		}
		out := append([]int64(nil), seedDims...)
		for d := range out {
			ds, ok := idxGroup.Dataset(itoa(int64(d)))
			if !ok {
				continue
			}
			if err := checkSubsetIndices(ds, seedDims[d], opts.HDF5BufferSize); err != nil {
				return nil, err
			}
			out[d] = ds.Len()
		}
		return out, nil

	case "combine":
		alongDS, err := hdf5x.RequireDataset(g, "along")
		if err != nil {
			return nil, err
		}
		along, err := readScalarInt(alongDS, opts.HDF5BufferSize)
		if err != nil {
			return nil, err
		}
		seeds, err := hdf5x.RequireGroup(g, "seeds")
		if err != nil {
			return nil, err
		}
		var out []int64
		for i := 0; ; i++ {
			sub, ok := seeds.Group(itoa(int64(i)))
			if !ok {
				if i == 0 {
					return nil, types.NewError(types.ErrKindStructure, "'seeds' group should contain at least one seed")
				}
				break
			}
			dims, err := walkGraph(sub, opts, refs)
			if err != nil {
				return nil, err
			}
			if along < 0 || along >= int64(len(dims)) {
				return nil, types.NewError(types.ErrKindValue, "'along' is outside the seeds' dimensionality")
			}
			if out == nil {
				out = append([]int64(nil), dims...)
				continue
			}
			if len(dims) != len(out) {
				return nil, types.NewError(types.ErrKindValue, "combined seeds should all have the same dimensionality")
			}
			for d := range dims {
				if int64(d) == along {
					out[d] += dims[d]
				} else if dims[d] != out[d] {
					return nil, types.NewError(types.ErrKindValue, "combined seeds disagree on the extent of dimension %d", d)
				}
			}
		}
		return out, nil

	default:
		// Unary operations (arithmetic, boolean, comparison, log, round,
		// unary math, dimnames, type casts, subset assignment) preserve the
		// seed's shape.
		return walkSeed(g, opts, refs)
	}
}

func walkSeed(g hdf5x.Group, opts types.Options, refs *[]seedRef) ([]int64, error) {
	sub, err := hdf5x.RequireGroup(g, "seed")
	if err != nil {
		return nil, err
	}
	return walkGraph(sub, opts, refs)
}

func checkSubsetIndices(ds hdf5x.Dataset, extent int64, blockSize int) error {
	return ds.IterateInt(blockSize, func(block []int64) error {
		for _, v := range block {
			if v < 0 || v >= extent {
				return types.NewError(types.ErrKindValue, "'index' contains a position outside the seed's extent")
			}
		}
		return nil
	})
}

func fetchStringAttr(g hdf5x.Group, name string) (string, error) {
	a, ok := g.Attr(name)
	if !ok {
		return "", types.NewError(types.ErrKindStructure, "expected a '%s' attribute", name)
	}
	s, ok := a.AsString()
	if !ok {
		return "", types.NewError(types.ErrKindStructure, "expected '%s' attribute to be a string", name)
	}
	return s, nil
}

func readIntValues(ds hdf5x.Dataset, blockSize int) ([]int64, error) {
	out := make([]int64, 0, ds.Len())
	err := ds.IterateInt(blockSize, func(block []int64) error {
		out = append(out, block...)
		return nil
	})
	if err != nil {
		return nil, types.WrapError(types.ErrKindPropagated, err, "could not read integer dataset")
	}
	return out, nil
}

func readScalarInt(ds hdf5x.Dataset, blockSize int) (int64, error) {
	if ds.Len() != 1 {
		return 0, types.NewError(types.ErrKindStructure, "expected a scalar dataset")
	}
	vals, err := readIntValues(ds, blockSize)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func reverseDims(dims []int64) []int64 {
	out := make([]int64, len(dims))
	for i, d := range dims {
		out[len(dims)-1-i] = d
	}
	return out
}
