package experiment

import (
	"math"
	"path/filepath"
	"strconv"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/metadata"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateSpatialExperiment implements the spatial_experiment validator
//: a single cell experiment plus `coordinates/` (a 2-D numeric
// dense array with 2 or 3 columns, rows = ncol) and an `images/` mapping
// of samples to image objects.
func ValidateSpatialExperiment(path string, md types.ObjectMetadata, opts types.Options) error {
	dims, err := validateSingleCellCore(path, md, opts, "spatial_experiment")
	if err != nil {
		return err
	}
	ncol := dims[1]

	if err := validateSpatialCoordinates(path, ncol, opts); err != nil {
		return err
	}
	if err := validateSpatialImages(path, ncol, opts); err != nil {
		return err
	}
	return nil
}

// HeightSpatialExperiment returns dimensions[0].
func HeightSpatialExperiment(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	dims, err := readDimensions(md, "spatial_experiment")
	if err != nil {
		return 0, err
	}
	return dims[0], nil
}

// DimensionsSpatialExperiment returns the declared [nrow, ncol].
func DimensionsSpatialExperiment(path string, md types.ObjectMetadata, opts types.Options) ([]int64, error) {
	return readDimensions(md, "spatial_experiment")
}

func validateSpatialCoordinates(path string, ncol int64, opts types.Options) error {
	coordPath := filepath.Join(path, "coordinates")
	coordMD, err := metadata.Read(coordPath)
	if err != nil {
		return err
	}
	if !opts.Registry.DerivedFrom(coordMD.Type, "dense_array") {
		return types.NewError(types.ErrKindValue, "'coordinates' should be a dense array")
	}
	if err := dispatch.Validate(coordPath, opts); err != nil {
		return types.WrapError(types.ErrKindPropagated, err, "failed to validate 'coordinates'")
	}
	cdims, err := dispatch.Dimensions(coordPath, opts)
	if err != nil {
		return err
	}
	if len(cdims) != 2 {
		return types.NewError(types.ErrKindValue, "'coordinates' should be a 2-dimensional dense array")
	}
	if cdims[1] != 2 && cdims[1] != 3 {
		return types.NewError(types.ErrKindValue, "'coordinates' should have 2 or 3 columns")
	}
	if cdims[0] != ncol {
		return types.NewError(types.ErrKindValue, "number of rows in 'coordinates' should equal the number of columns in the spatial experiment")
	}

	f, g, err := hdf5x.OpenPayload(coordPath, "array.h5", "dense_array")
	if err != nil {
		return err
	}
	defer f.Close()
	ds, err := hdf5x.RequireDataset(g, "data")
	if err != nil {
		return err
	}
	if ds.Class() != hdf5x.ClassInteger && ds.Class() != hdf5x.ClassFloat {
		return types.NewError(types.ErrKindValue, "values in 'coordinates' should be numeric")
	}
	return nil
}

func validateSpatialImages(path string, ncol int64, opts types.Options) error {
	imageDir := filepath.Join(path, "images")
	f, g, err := hdf5x.OpenPayload(imageDir, "mapping.h5", "spatial_experiment")
	if err != nil {
		return err
	}
	defer f.Close()

	sampleNames, err := hdf5x.RequireDataset(g, "sample_names")
	if err != nil {
		return err
	}
	if err := primitives.ValidateFactorLevels(sampleNames, true, opts.HDF5BufferSize); err != nil {
		return types.WrapError(types.ErrKindValue, err, "sample_names")
	}
	numSamples := sampleNames.Len()

	columnSamples, err := hdf5x.RequireDataset(g, "column_samples")
	if err != nil {
		return err
	}
	if columnSamples.Len() != ncol {
		return types.NewError(types.ErrKindValue, "length of 'column_samples' should equal the number of columns in the spatial experiment")
	}
	if err := primitives.ValidateFactorCodes(columnSamples, int(numSamples), false, 0, opts.HDF5BufferSize); err != nil {
		return types.WrapError(types.ErrKindValue, err, "column_samples")
	}

	imageSamples, err := hdf5x.RequireDataset(g, "image_samples")
	if err != nil {
		return err
	}
	if !imageSamples.FitsUnsignedInt(64) {
		return types.NewError(types.ErrKindValue, "expected a datatype for 'image_samples' that fits in a 64-bit unsigned integer")
	}
	numImages := imageSamples.Len()

	imageIDs, err := hdf5x.RequireDataset(g, "image_ids")
	if err != nil {
		return err
	}
	if imageIDs.Class() != hdf5x.ClassString {
		return types.NewError(types.ErrKindValue, "expected a string datatype for 'image_ids'")
	}
	if imageIDs.Len() != numImages {
		return types.NewError(types.ErrKindValue, "expected 'image_ids' to have the same length as 'image_samples'")
	}

	sampleAssignments := make([]int64, 0, numImages)
	if err := imageSamples.IterateInt(opts.HDF5BufferSize, func(block []int64) error {
		sampleAssignments = append(sampleAssignments, block...)
		return nil
	}); err != nil {
		return err
	}

	idsBySample := make([]map[string]bool, numSamples)
	for i := range idsBySample {
		idsBySample[i] = map[string]bool{}
	}
	idx := 0
	if err := imageIDs.IterateString(opts.HDF5BufferSize, func(block []hdf5x.NullableString) error {
		for _, v := range block {
			if v.Null {
				return types.NewError(types.ErrKindValue, "'image_ids' should not contain missing values")
			}
			sampleIdx := sampleAssignments[idx]
			if sampleIdx < 0 || sampleIdx >= numSamples {
				return types.NewError(types.ErrKindValue, "entries of 'image_samples' should be less than the number of samples")
			}
			if idsBySample[sampleIdx][v.Value] {
				return types.NewError(types.ErrKindValue, "'image_ids' contains duplicated image IDs for the same sample ('%s')", v.Value)
			}
			idsBySample[sampleIdx][v.Value] = true
			idx++
		}
		return nil
	}); err != nil {
		return err
	}

	for i, present := range idsBySample {
		if len(present) == 0 {
			return types.NewError(types.ErrKindValue, "each sample should map to one or more images ('%d' has none)", i)
		}
	}

	scaleFactors, err := hdf5x.RequireDataset(g, "image_scale_factors")
	if err != nil {
		return err
	}
	if !scaleFactors.FitsFloat(64) {
		return types.NewError(types.ErrKindValue, "expected a datatype for 'image_scale_factors' that fits in a 64-bit float")
	}
	if scaleFactors.Len() != numImages {
		return types.NewError(types.ErrKindValue, "expected 'image_scale_factors' to have the same length as 'image_samples'")
	}
	if err := scaleFactors.IterateFloat(opts.HDF5BufferSize, func(block []float64) error {
		for _, v := range block {
			if !isFinitePositive(v) {
				return types.NewError(types.ErrKindValue, "entries of 'image_scale_factors' should be finite and positive")
			}
		}
		return nil
	}); err != nil {
		return err
	}

	for i := int64(0); i < numImages; i++ {
		childPath := filepath.Join(imageDir, strconv.FormatInt(i, 10))
		if err := dispatch.ValidateChild(childPath, "image_file", "", opts); err != nil {
			return err
		}
	}
	count, err := countDirEntries(imageDir)
	if err != nil {
		return err
	}
	if int64(count-1) != numImages {
		return types.NewError(types.ErrKindStructure, "'images' directory contains more objects than expected")
	}

	return nil
}

func isFinitePositive(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v) && v > 0
}
