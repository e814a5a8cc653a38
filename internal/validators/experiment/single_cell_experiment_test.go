package experiment_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

// Scenario: a 20x15 single-cell experiment with a (15,5) reduced
// dimension entry passes; a (20,5) entry fails on the row count.
func TestSingleCellExperimentReducedDimensions(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 20, 15, []string{"counts", "logcounts"})
	rd := filepath.Join(dir, "reduced_dimensions")
	mockobj.WriteNamesJSON(t, rd, []string{"x"})
	mockobj.DenseArray(t, filepath.Join(rd, "0"), "number", []int64{15, 5})

	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))

	mockobj.DenseArray(t, filepath.Join(rd, "0"), "number", []int64{20, 5})
	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "number of rows")
}

func TestSingleCellExperimentPlain(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 8, 6, []string{"counts"})
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))
	h, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	require.Equal(t, int64(8), h)
}

func TestSingleCellExperimentAlternativeExperiments(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 8, 6, []string{"counts"})
	ae := filepath.Join(dir, "alternative_experiments")
	mockobj.WriteNamesJSON(t, ae, []string{"adt"})
	mockobj.SummarizedExperiment(t, filepath.Join(ae, "0"), 3, 6, []string{"counts"})

	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}

func TestSingleCellExperimentAltExpColumnMismatch(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 8, 6, []string{"counts"})
	ae := filepath.Join(dir, "alternative_experiments")
	mockobj.WriteNamesJSON(t, ae, []string{"adt"})
	mockobj.SummarizedExperiment(t, filepath.Join(ae, "0"), 3, 5, []string{"counts"})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "columns")
}

func TestSingleCellExperimentAltExpMustBeSummarized(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 8, 6, []string{"counts"})
	ae := filepath.Join(dir, "alternative_experiments")
	mockobj.WriteNamesJSON(t, ae, []string{"adt"})
	mockobj.IntVector(t, filepath.Join(ae, "0"), 6, false)

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
	require.Contains(t, err.Error(), "SUMMARIZED_EXPERIMENT")
}

func TestSingleCellExperimentExtraReducedDimension(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 8, 6, []string{"counts"})
	rd := filepath.Join(dir, "reduced_dimensions")
	mockobj.WriteNamesJSON(t, rd, []string{"x"})
	mockobj.DenseArray(t, filepath.Join(rd, "0"), "number", []int64{6, 2})
	mockobj.DenseArray(t, filepath.Join(rd, "1"), "number", []int64{6, 2})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindStructure, kindOf(t, err))
}

// A derived type satisfies SUMMARIZED_EXPERIMENT transitively, so a
// single_cell_experiment is accepted as an alternative experiment.
func TestSingleCellExperimentNestedDerivedAltExp(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 8, 6, []string{"counts"})
	ae := filepath.Join(dir, "alternative_experiments")
	mockobj.WriteNamesJSON(t, ae, []string{"nested"})
	mockobj.SingleCellExperiment(t, filepath.Join(ae, "0"), 2, 6, []string{"counts"})

	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}
