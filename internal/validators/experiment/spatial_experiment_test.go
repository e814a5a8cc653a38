package experiment_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

// spatialExperiment builds a complete valid spatial_experiment: an SCE
// core, 2-D coordinates, and an images/ mapping with one sample and
// numImages PNG images.
func spatialExperiment(t *testing.T, dir string, nrow, ncol int64, numImages int) *hdf5x.FakeGroup {
	t.Helper()
	mockobj.WriteOBJECT(t, dir, "spatial_experiment", map[string]interface{}{
		"version": "1.0", "dimensions": []int64{nrow, ncol},
	})
	assays := filepath.Join(dir, "assays")
	mockobj.WriteNamesJSON(t, assays, []string{"counts"})
	mockobj.DenseArray(t, filepath.Join(assays, "0"), "integer", []int64{nrow, ncol})

	mockobj.DenseArray(t, filepath.Join(dir, "coordinates"), "number", []int64{ncol, 2})

	imagesDir := filepath.Join(dir, "images")
	root := hdf5x.NewFakeGroup()
	g := root.Group("spatial_experiment")
	g.Dataset("sample_names").Strings([]string{"sample_1"})
	g.Dataset("column_samples").Ints(make([]int64, ncol)).WithBitWidth(32, 32, 64)
	imageSamples := make([]int64, numImages)
	imageIDs := make([]string, numImages)
	scales := make([]float64, numImages)
	for i := range imageIDs {
		imageIDs[i] = "img_" + string(rune('a'+i))
		scales[i] = 1.5
	}
	g.Dataset("image_samples").Ints(imageSamples)
	g.Dataset("image_ids").Strings(imageIDs)
	g.Dataset("image_scale_factors").Floats(scales)
	mockobj.InstallH5(t, imagesDir, "mapping.h5", root)

	for i := 0; i < numImages; i++ {
		mockobj.PNGFile(t, filepath.Join(imagesDir, string(rune('0'+i))))
	}
	return g
}

func TestSpatialExperimentValid(t *testing.T) {
	dir := t.TempDir()
	spatialExperiment(t, dir, 10, 4, 2)
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))
	dims, err := dispatch.Dimensions(dir, opts)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 4}, dims)
}

func TestSpatialExperimentCoordinateShape(t *testing.T) {
	dir := t.TempDir()
	spatialExperiment(t, dir, 10, 4, 1)
	// 4 columns of coordinates is not allowed.
	mockobj.DenseArray(t, filepath.Join(dir, "coordinates"), "number", []int64{4, 4})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 or 3 columns")
}

func TestSpatialExperimentCoordinateRowsMismatch(t *testing.T) {
	dir := t.TempDir()
	spatialExperiment(t, dir, 10, 4, 1)
	mockobj.DenseArray(t, filepath.Join(dir, "coordinates"), "number", []int64{5, 2})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "rows")
}

func TestSpatialExperimentCoordinatesMustBeNumeric(t *testing.T) {
	dir := t.TempDir()
	spatialExperiment(t, dir, 10, 4, 1)
	mockobj.DenseArray(t, filepath.Join(dir, "coordinates"), "string", []int64{4, 2})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "numeric")
}

func TestSpatialExperimentDuplicateImageIDsWithinSample(t *testing.T) {
	dir := t.TempDir()
	g := spatialExperiment(t, dir, 10, 4, 2)
	g.Dataset("image_ids").Strings([]string{"dup", "dup"})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicated image IDs")
}

func TestSpatialExperimentNonPositiveScaleFactor(t *testing.T) {
	dir := t.TempDir()
	g := spatialExperiment(t, dir, 10, 4, 1)
	g.Dataset("image_scale_factors").Floats([]float64{0})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "finite and positive")
}

func TestSpatialExperimentSampleWithoutImages(t *testing.T) {
	dir := t.TempDir()
	g := spatialExperiment(t, dir, 10, 4, 1)
	g.Dataset("sample_names").Strings([]string{"sample_1", "sample_2"})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "one or more images")
}

func TestSpatialExperimentExtraImageDir(t *testing.T) {
	dir := t.TempDir()
	spatialExperiment(t, dir, 10, 4, 1)
	mockobj.PNGFile(t, filepath.Join(dir, "images", "1"))

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindStructure, kindOf(t, err))
}

func TestSpatialExperimentColumnSampleOutOfRange(t *testing.T) {
	dir := t.TempDir()
	g := spatialExperiment(t, dir, 10, 4, 1)
	g.Dataset("column_samples").Ints([]int64{0, 0, 0, 7}).WithBitWidth(32, 32, 64)

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
}
