package atomic

import (
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateStringFactor implements the string_factor validator:
// unique `levels`, range-checked `codes`, optional `ordered` attribute,
// optional `names` dataset.
func ValidateStringFactor(path string, md types.ObjectMetadata, opts types.Options) error {
	f, g, err := hdf5x.OpenPayload(path, "contents.h5", "string_factor")
	if err != nil {
		return err
	}
	defer f.Close()
	return ValidateStringFactorGroup(g, opts)
}

// HeightStringFactor returns the number of codes.
func HeightStringFactor(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "contents.h5", "string_factor")
	if err != nil {
		return 0, err
	}
	defer f.Close()
	ds, err := hdf5x.RequireDataset(g, "codes")
	if err != nil {
		return 0, err
	}
	return ds.Len(), nil
}

// ValidateStringFactorGroup is the core string_factor contract.
func ValidateStringFactorGroup(g hdf5x.Group, opts types.Options) error {
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
		return types.NewError(types.ErrKindVersion, "unsupported string_factor version %d", v.Major)
	}

	levels, err := hdf5x.RequireDataset(g, "levels")
	if err != nil {
		return err
	}
	if err := primitives.ValidateFactorLevels(levels, true, opts.HDF5BufferSize); err != nil {
		return err
	}

	codes, err := hdf5x.RequireDataset(g, "codes")
	if err != nil {
		return err
	}
	if len(codes.Dims()) != 1 {
		return types.NewError(types.ErrKindValue, "'codes' dataset should be one-dimensional")
	}
	if !codes.FitsSignedInt(32) {
		return types.NewError(types.ErrKindValue, "codes must fit in a signed 32-bit integer")
	}

	hasPH, phVal := false, int64(0)
	if a, ok := codes.Attr("missing-value-placeholder"); ok {
		v, ok := a.AsInt()
		if !ok {
			return types.NewError(types.ErrKindValue, "'missing-value-placeholder' on 'codes' should be an integer")
		}
		hasPH, phVal = true, v
	}
	if err := primitives.ValidateFactorCodes(codes, int(levels.Len()), hasPH, phVal, opts.HDF5BufferSize); err != nil {
		return err
	}

	if _, err := primitives.CheckOrderedAttribute(g); err != nil {
		return err
	}

	if names, ok := g.Dataset("names"); ok {
		if err := primitives.ValidateNames(names, codes.Len(), opts.HDF5BufferSize); err != nil {
			return err
		}
	}

	return nil
}
