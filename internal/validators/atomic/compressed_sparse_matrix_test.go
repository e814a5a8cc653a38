package atomic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

// A 10x20 CSC matrix with one non-zero in every other column: indptr
// carries runs of equal values for the empty columns, which is exactly
// the slice-advancing behavior the block scan has to get right.
func TestSparseMatrixEmptyColumns(t *testing.T) {
	dir := t.TempDir()
	cols := make([][]int64, 20)
	for c := range cols {
		if c%2 == 0 {
			cols[c] = []int64{int64(c % 10)}
		}
	}
	mockobj.SparseMatrixCSC(t, dir, 10, 20, cols)
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))

	dims, err := dispatch.Dimensions(dir, opts)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, dims)

	h, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	require.Equal(t, int64(10), h)
}

func TestSparseMatrixNonIncreasingIndices(t *testing.T) {
	dir := t.TempDir()
	mockobj.SparseMatrixCSC(t, dir, 10, 2, [][]int64{{3, 3}, {1}})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
	require.Contains(t, err.Error(), "strictly increasing")
}

func TestSparseMatrixIndexOutOfRange(t *testing.T) {
	dir := t.TempDir()
	mockobj.SparseMatrixCSC(t, dir, 10, 2, [][]int64{{11}, {}})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
	require.Contains(t, err.Error(), "out of range")
}

func TestSparseMatrixBadIndptrStart(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.SparseMatrixCSC(t, dir, 4, 2, [][]int64{{0}, {1}})
	g.Dataset("indptr").Ints([]int64{1, 1, 2})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "'indptr[0]' should be 0")
}

func TestSparseMatrixNonMonotoneIndptr(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.SparseMatrixCSC(t, dir, 4, 3, [][]int64{{0}, {1}, {}})
	g.Dataset("indptr").Ints([]int64{0, 2, 1, 2})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-decreasing")
}

func TestSparseMatrixUnknownLayout(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.SparseMatrixCSC(t, dir, 4, 2, [][]int64{{0}, {1}})
	g.SetStringAttr("layout", "COO")

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
}

func TestSparseMatrixCSRLayout(t *testing.T) {
	dir := t.TempDir()
	// For CSR the primary dimension is the row count, so indptr must have
	// nrow+1 entries and indices stay below ncol.
	g := mockobj.SparseMatrixCSC(t, dir, 3, 5, nil)
	g.SetStringAttr("layout", "CSR")
	g.Dataset("data").Ints([]int64{1, 2}).WithDims(2).WithBitWidth(32, 32, 64)
	g.Dataset("indices").Ints([]int64{0, 4}).WithDims(2)
	g.Dataset("indptr").Ints([]int64{0, 1, 1, 2}).WithDims(4)

	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}
