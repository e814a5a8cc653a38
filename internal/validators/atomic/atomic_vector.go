package atomic

import (
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateAtomicVector implements the atomic_vector validator: a `values`
// dataset under contents.h5/atomic_vector, typed integer/boolean/number/
// string, with an optional same-length `names` dataset and an optional
// type-matched missing-value placeholder.
func ValidateAtomicVector(path string, md types.ObjectMetadata, opts types.Options) error {
	f, g, err := hdf5x.OpenPayload(path, "contents.h5", "atomic_vector")
	if err != nil {
		return err
	}
	defer f.Close()
	return ValidateAtomicVectorGroup(g, opts)
}

// HeightAtomicVector returns the length of the `values` dataset.
func HeightAtomicVector(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "contents.h5", "atomic_vector")
	if err != nil {
		return 0, err
	}
	defer f.Close()
	ds, err := hdf5x.RequireDataset(g, "values")
	if err != nil {
		return 0, err
	}
	return ds.Len(), nil
}

// ValidateAtomicVectorGroup is the core atomic_vector contract, taking an already
// open group so tests can exercise it against an in-memory fake.
func ValidateAtomicVectorGroup(g hdf5x.Group, opts types.Options) error {
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
		return types.NewError(types.ErrKindVersion, "unsupported atomic_vector version %d", v.Major)
	}

	typeStr, err := primitives.FetchStringAttr(g, "type")
	if err != nil {
		return err
	}
	elemType, err := ParseElementType(typeStr, true)
	if err != nil {
		return err
	}

	values, err := hdf5x.RequireDataset(g, "values")
	if err != nil {
		return err
	}
	if len(values.Dims()) != 1 {
		return types.NewError(types.ErrKindValue, "'values' dataset should be one-dimensional")
	}

	if elemType == String {
		hasPH, phStr, _, _, err := ResolvePlaceholder(values, elemType)
		if err != nil {
			return err
		}
		formatStr, err := primitives.OptionalStringAttr(g, "format", "")
		if err != nil {
			return err
		}
		format, err := primitives.ParseStringFormat(formatStr)
		if err != nil {
			return err
		}
		if err := ValidateStringValues(values, format, hasPH, phStr, opts.HDF5BufferSize); err != nil {
			return err
		}
	} else {
		if err := ValidateNumericClass(values, elemType); err != nil {
			return err
		}
		if _, _, _, _, err := ResolvePlaceholder(values, elemType); err != nil {
			return err
		}
	}

	if names, ok := g.Dataset("names"); ok {
		if err := primitives.ValidateNames(names, values.Len(), opts.HDF5BufferSize); err != nil {
			return err
		}
	}

	return nil
}
