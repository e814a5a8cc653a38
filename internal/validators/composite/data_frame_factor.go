package composite

import (
	"path/filepath"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateDataFrameFactor implements the data_frame_factor validator
//: integer codes into a sibling DATA_FRAME-interface `levels/`
// object, whose rows are checked for uniqueness through the pluggable
// AnyDuplicatedRowsCheck hook rather than a hard-coded algorithm (the
// upstream draft never settled on one - see the design notes).
func ValidateDataFrameFactor(path string, md types.ObjectMetadata, opts types.Options) error {
	opts = opts.WithDefaults()

	f, g, err := hdf5x.OpenPayload(path, "contents.h5", "data_frame_factor")
	if err != nil {
		return err
	}
	defer f.Close()

	ver, err := primitives.FetchStringAttr(g, "version")
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(ver)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported data_frame_factor version %d", v.Major)
	}

	codes, err := hdf5x.RequireDataset(g, "codes")
	if err != nil {
		return err
	}
	if len(codes.Dims()) != 1 {
		return types.NewError(types.ErrKindValue, "'codes' dataset should be one-dimensional")
	}
	if !codes.FitsSignedInt(32) && !codes.FitsUnsignedInt(32) {
		return types.NewError(types.ErrKindValue, "'codes' dataset should fit in a 32-bit integer")
	}
	numCodes := codes.Len()

	if names, ok := g.Dataset("names"); ok {
		if err := primitives.ValidateNames(names, numCodes, opts.HDF5BufferSize); err != nil {
			return err
		}
	}

	levelsPath := filepath.Join(path, "levels")
	if err := dispatch.ValidateChild(levelsPath, "", types.InterfaceDataFrame, opts); err != nil {
		return err
	}
	numLevels, err := dispatch.Height(levelsPath, opts)
	if err != nil {
		return err
	}

	hasPH, phVal := factorPlaceholder(codes)
	if err := primitives.ValidateFactorCodes(codes, int(numLevels), hasPH, phVal, opts.HDF5BufferSize); err != nil {
		return err
	}

	if opts.AnyDuplicatedRowsCheck != nil {
		dup, err := opts.AnyDuplicatedRowsCheck(levelsPath)
		if err != nil {
			return types.WrapError(types.ErrKindPropagated, err, "duplicated-rows check on 'levels'")
		}
		if dup {
			return types.NewError(types.ErrKindValue, "'levels' data frame contains duplicated rows")
		}
	}

	if err := validateSiblingAnnotations(path, numCodes, opts); err != nil {
		return err
	}

	return nil
}

// HeightDataFrameFactor returns the number of codes.
func HeightDataFrameFactor(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	f, g, err := hdf5x.OpenPayload(path, "contents.h5", "data_frame_factor")
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

func factorPlaceholder(ds hdf5x.Dataset) (bool, int64) {
	v, ok := primitives.DatasetIntAttr(ds, "missing-value-placeholder")
	return ok, v
}
