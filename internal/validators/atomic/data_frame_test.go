package atomic_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

func TestDataFrameBasicColumns(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 10, []mockobj.Column{
		{Name: "counts", Type: "integer"},
		{Name: "score", Type: "number"},
		{Name: "label", Type: "string"},
		{Name: "group", Type: "factor", Levels: []string{"a", "b"}, Codes: []int64{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}},
	})
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))

	h, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	require.Equal(t, int64(10), h)

	dims, err := dispatch.Dimensions(dir, opts)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 4}, dims)
}

func TestDataFrameWithOtherColumn(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 51, []mockobj.Column{
		{Name: "Aaron", Type: "other"},
		{Name: "Barry", Type: "integer"},
	})
	mockobj.DataFrame(t, filepath.Join(dir, "other_columns", "0"), 51, []mockobj.Column{
		{Name: "nested", Type: "integer"},
	})

	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}

func TestDataFrameOtherColumnHeightMismatch(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 51, []mockobj.Column{
		{Name: "Aaron", Type: "other"},
	})
	mockobj.DataFrame(t, filepath.Join(dir, "other_columns", "0"), 50, []mockobj.Column{
		{Name: "nested", Type: "integer"},
	})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
	require.Contains(t, err.Error(), "rows")
}

func TestDataFrameMissingOtherColumnsDir(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 5, []mockobj.Column{
		{Name: "Aaron", Type: "other"},
	})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindStructure, kindOf(t, err))
}

func TestDataFrameDuplicateColumnNames(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 5, []mockobj.Column{
		{Name: "x", Type: "integer"},
		{Name: "x", Type: "number"},
	})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate column name")
}

func TestDataFrameEmptyColumnName(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 5, []mockobj.Column{
		{Name: "", Type: "integer"},
	})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-empty")
}

func TestDataFrameColumnLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.DataFrame(t, dir, 5, []mockobj.Column{
		{Name: "x", Type: "integer"},
	})
	g.Group("data").Dataset("0").Ints([]int64{1, 2, 3}).WithDims(3).SetStringAttr("type", "integer")

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
}

func TestDataFrameUnexpectedDataEntry(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.DataFrame(t, dir, 5, []mockobj.Column{
		{Name: "x", Type: "integer"},
	})
	g.Group("data").Dataset("7").Ints(make([]int64, 5)).SetStringAttr("type", "integer")

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected entry")
}

func TestDataFrameFactorColumnCodeRange(t *testing.T) {
	dir := t.TempDir()
	mockobj.DataFrame(t, dir, 2, []mockobj.Column{
		{Name: "f", Type: "factor", Levels: []string{"a"}, Codes: []int64{0, 3}},
	})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
}

func TestDataFrameRowNames(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.DataFrame(t, dir, 3, []mockobj.Column{
		{Name: "x", Type: "integer"},
	})
	g.Dataset("row_names").Strings([]string{"r1", "r2", "r3"})
	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))

	g.Dataset("row_names").Strings([]string{"r1"}).WithDims(1)
	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
}
