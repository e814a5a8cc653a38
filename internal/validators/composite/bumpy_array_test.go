package composite_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

// bumpyArray builds a bumpy_atomic_array payload by hand; the bumpy
// layouts are fiddly enough that the tests own the construction.
func bumpyArray(t *testing.T, dir string, dims, lengths []int64, sparse [][]int64) *hdf5x.FakeGroup {
	t.Helper()
	mockobj.WriteOBJECT(t, dir, "bumpy_atomic_array", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("bumpy_atomic_array")
	g.SetStringAttr("version", "1.0")
	g.Dataset("dimensions").Ints(dims)
	g.Dataset("lengths").Ints(lengths)
	if sparse != nil {
		idx := g.Group("indices")
		for d, vals := range sparse {
			idx.Dataset(itoa(d)).Ints(vals)
		}
	}
	mockobj.InstallH5(t, dir, "partitions.h5", root)

	var total int64
	for _, l := range lengths {
		total += l
	}
	mockobj.IntVector(t, dir+"/concatenated", int(total), false)
	return g
}

func itoa(d int) string { return strconv.Itoa(d) }

func TestBumpyArrayDense(t *testing.T) {
	dir := t.TempDir()
	bumpyArray(t, dir, []int64{2, 3}, []int64{1, 2, 3, 4, 5, 6}, nil)
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))
	dims, err := dispatch.Dimensions(dir, opts)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 3}, dims)

	h, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	require.Equal(t, int64(2), h)
}

func TestBumpyArrayDensePartitionCountMismatch(t *testing.T) {
	dir := t.TempDir()
	bumpyArray(t, dir, []int64{2, 3}, []int64{1, 2, 3}, nil)

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
	require.Contains(t, err.Error(), "product of dimensions")
}

func TestBumpyArraySparse(t *testing.T) {
	dir := t.TempDir()
	bumpyArray(t, dir, []int64{4, 5}, []int64{2, 3},
		[][]int64{{0, 2}, {1, 4}})
	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}

func TestBumpyArraySparseIndexOutOfBounds(t *testing.T) {
	dir := t.TempDir()
	bumpyArray(t, dir, []int64{4, 5}, []int64{2, 3},
		[][]int64{{0, 2}, {1, 9}})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of bounds")
}

func TestBumpyArraySparseNotIncreasing(t *testing.T) {
	dir := t.TempDir()
	bumpyArray(t, dir, []int64{4, 5}, []int64{2, 3},
		[][]int64{{2, 0}, {1, 4}})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "strictly increasing")
}

func TestBumpyArraySumMismatch(t *testing.T) {
	dir := t.TempDir()
	mockobj.WriteOBJECT(t, dir, "bumpy_atomic_array", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("bumpy_atomic_array")
	g.SetStringAttr("version", "1.0")
	g.Dataset("dimensions").Ints([]int64{2})
	g.Dataset("lengths").Ints([]int64{1, 2})
	mockobj.InstallH5(t, dir, "partitions.h5", root)
	mockobj.IntVector(t, dir+"/concatenated", 7, false)

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "partition lengths sum")
}

func TestBumpyDataFrameArray(t *testing.T) {
	dir := t.TempDir()
	mockobj.WriteOBJECT(t, dir, "bumpy_data_frame_array", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("bumpy_data_frame_array")
	g.SetStringAttr("version", "1.0")
	g.Dataset("dimensions").Ints([]int64{2})
	g.Dataset("lengths").Ints([]int64{3, 4})
	mockobj.InstallH5(t, dir, "partitions.h5", root)
	mockobj.DataFrame(t, dir+"/concatenated", 7, []mockobj.Column{{Name: "x", Type: "integer"}})

	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}

func TestBumpyArrayPerDimensionNames(t *testing.T) {
	dir := t.TempDir()
	g := bumpyArray(t, dir, []int64{2, 2}, []int64{1, 1, 1, 1}, nil)
	names := g.Group("names")
	names.Dataset("0").Strings([]string{"r1", "r2"})
	names.Dataset("1").Strings([]string{"c1", "c2"})
	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))

	names.Dataset("1").Strings([]string{"c1"}).WithDims(1)
	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
}
