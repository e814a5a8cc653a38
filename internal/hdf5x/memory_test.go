package hdf5x

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstallMemoryFile(t *testing.T) {
	root := NewFakeGroup()
	root.Group("top").Dataset("values").Ints([]int64{1, 2, 3})

	cleanup := InstallMemoryFile("/nonexistent/contents.h5", root)
	defer cleanup()

	f, err := Open("/nonexistent/contents.h5")
	require.NoError(t, err)
	defer f.Close()

	g, err := f.OpenGroup("top")
	require.NoError(t, err)
	ds, ok := g.Dataset("values")
	require.True(t, ok)
	require.Equal(t, int64(3), ds.Len())
}

func TestInstallMemoryFileCleanup(t *testing.T) {
	cleanup := InstallMemoryFile("/nonexistent/gone.h5", NewFakeGroup())
	cleanup()
	_, err := Open("/nonexistent/gone.h5")
	require.Error(t, err)
}

func TestFakeDatasetBlockIteration(t *testing.T) {
	g := NewFakeGroup()
	ds := g.Dataset("x").Ints([]int64{0, 1, 2, 3, 4, 5, 6})

	var blocks [][]int64
	require.NoError(t, ds.IterateInt(3, func(b []int64) error {
		cp := append([]int64(nil), b...)
		blocks = append(blocks, cp)
		return nil
	}))
	require.Len(t, blocks, 3)
	require.Equal(t, []int64{6}, blocks[2])
}
