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

// multiSampleDataset builds a valid dataset with numSamples samples and
// one summarized experiment per entry in expNcols, whose sample maps
// assign every column to sample 0.
func multiSampleDataset(t *testing.T, dir string, numSamples int64, expNcols []int64) *hdf5x.FakeGroup {
	t.Helper()
	mockobj.WriteOBJECT(t, dir, "multi_sample_dataset", map[string]interface{}{"version": "1.0"})
	mockobj.DataFrame(t, filepath.Join(dir, "sample_data"), numSamples, []mockobj.Column{
		{Name: "sample_id", Type: "string"},
	})

	expDir := filepath.Join(dir, "experiments")
	names := make([]string, len(expNcols))
	for i := range names {
		names[i] = "exp_" + string(rune('a'+i))
	}
	if len(expNcols) > 0 {
		mockobj.WriteNamesJSON(t, expDir, names)
		for i, ncol := range expNcols {
			mockobj.SummarizedExperiment(t, filepath.Join(expDir, string(rune('0'+i))), 5, ncol, []string{"counts"})
		}
	}

	root := hdf5x.NewFakeGroup()
	g := root.Group("multi_sample_dataset")
	for i, ncol := range expNcols {
		g.Dataset(string(rune('0' + i))).Ints(make([]int64, ncol))
	}
	mockobj.InstallH5(t, dir, "sample_map.h5", root)
	return g
}

func TestMultiSampleDatasetValid(t *testing.T) {
	dir := t.TempDir()
	multiSampleDataset(t, dir, 3, []int64{4, 2})
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))
	h, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	require.Equal(t, int64(3), h)
}

func TestMultiSampleDatasetNoExperiments(t *testing.T) {
	dir := t.TempDir()
	multiSampleDataset(t, dir, 2, nil)
	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}

func TestMultiSampleDatasetSampleMapLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	g := multiSampleDataset(t, dir, 3, []int64{4})
	g.Dataset("0").Ints(make([]int64, 3)).WithDims(3)

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "number of columns")
}

func TestMultiSampleDatasetSampleIndexOutOfRange(t *testing.T) {
	dir := t.TempDir()
	g := multiSampleDataset(t, dir, 3, []int64{2})
	g.Dataset("0").Ints([]int64{0, 5})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of bounds")
}

func TestMultiSampleDatasetExtraSampleMapEntry(t *testing.T) {
	dir := t.TempDir()
	g := multiSampleDataset(t, dir, 3, []int64{2})
	g.Dataset("1").Ints([]int64{0, 0})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindStructure, kindOf(t, err))
}

func TestMultiSampleDatasetExperimentMustBeSummarized(t *testing.T) {
	dir := t.TempDir()
	multiSampleDataset(t, dir, 3, []int64{2})
	mockobj.IntVector(t, filepath.Join(dir, "experiments", "0"), 4, false)

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "SUMMARIZED_EXPERIMENT")
}

func TestMultiSampleDatasetOtherData(t *testing.T) {
	dir := t.TempDir()
	multiSampleDataset(t, dir, 2, nil)
	mockobj.SimpleListJSON(t, filepath.Join(dir, "other_data"), `["metadata"]`, 0)
	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}
