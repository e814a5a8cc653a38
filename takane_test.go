package takane_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

func TestValidatePicksUpDefaultRegistry(t *testing.T) {
	dir := t.TempDir()
	mockobj.IntVector(t, dir, 100, true)

	require.NoError(t, takane.Validate(dir, types.Options{}))

	h, err := takane.Height(dir, types.Options{})
	require.NoError(t, err)
	require.Equal(t, int64(100), h)
}

func TestDimensionsLeadingExtentMatchesHeight(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 12, []mockobj.Column{
		{Name: "x", Type: "integer"},
		{Name: "y", Type: "number"},
	})

	h, err := takane.Height(dir, types.Options{})
	require.NoError(t, err)
	dims, err := takane.Dimensions(dir, types.Options{})
	require.NoError(t, err)
	require.Equal(t, h, dims[0])
	require.Equal(t, []int64{12, 2}, dims)
}

func TestRegisterCustomType(t *testing.T) {
	dir := t.TempDir()
	mockobj.WriteOBJECT(t, dir, "frobnicator", nil)

	require.Error(t, takane.Validate(dir, types.Options{}))

	takane.RegisterValidate("frobnicator", func(path string, md types.ObjectMetadata, opts types.Options) error {
		return nil
	})
	takane.RegisterHeight("frobnicator", func(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
		return 42, nil
	})

	require.NoError(t, takane.Validate(dir, types.Options{}))
	h, err := takane.Height(dir, types.Options{})
	require.NoError(t, err)
	require.Equal(t, int64(42), h)
}

func TestRegisterInterfaceExtension(t *testing.T) {
	require.False(t, takane.SatisfiesInterface("widget_frame", types.InterfaceDataFrame))
	takane.RegisterInterface(types.InterfaceDataFrame, "widget_frame")
	require.True(t, takane.SatisfiesInterface("widget_frame", types.InterfaceDataFrame))
}

func TestDerivedFromDefaults(t *testing.T) {
	require.True(t, takane.DerivedFrom("single_cell_experiment", "summarized_experiment"))
	require.True(t, takane.DerivedFrom("spatial_experiment", "ranged_summarized_experiment"))
	require.True(t, takane.DerivedFrom("vcf_experiment", "summarized_experiment"))
	require.False(t, takane.DerivedFrom("summarized_experiment", "single_cell_experiment"))
}

// A composite object exercises the full recursive pipeline through the
// public entry point: an SCE with assays, annotation frames, and a
// reduced-dimensions entry.
func TestValidateRecursesThroughPublicAPI(t *testing.T) {
	dir := t.TempDir()
	mockobj.SingleCellExperiment(t, dir, 20, 15, []string{"counts", "logcounts"})
	mockobj.DataFrame(t, filepath.Join(dir, "row_data"), 20, []mockobj.Column{
		{Name: "gene", Type: "string"},
	})
	mockobj.DataFrame(t, filepath.Join(dir, "column_data"), 15, []mockobj.Column{
		{Name: "barcode", Type: "string"},
	})
	rd := filepath.Join(dir, "reduced_dimensions")
	mockobj.WriteNamesJSON(t, rd, []string{"pca"})
	mockobj.DenseArray(t, filepath.Join(rd, "0"), "number", []int64{15, 5})

	require.NoError(t, takane.Validate(dir, types.Options{}))

	h, err := takane.Height(dir, types.Options{})
	require.NoError(t, err)
	require.Equal(t, int64(20), h)
}
