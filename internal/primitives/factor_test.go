package primitives

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/hdf5x"
)

func TestValidateFactorLevelsUnique(t *testing.T) {
	g := hdf5x.NewFakeGroup()
	levels := g.Dataset("levels").Strings([]string{"a", "b", "c"})
	require.NoError(t, ValidateFactorLevels(levels, true, 2))

	dup := g.Dataset("dup").Strings([]string{"a", "b", "a"})
	err := ValidateFactorLevels(dup, true, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unique")
}

func TestValidateFactorLevelsRejectsNulls(t *testing.T) {
	g := hdf5x.NewFakeGroup()
	levels := g.Dataset("levels").StringsWithNulls([]hdf5x.NullableString{{Value: "a"}, {Null: true}})
	require.Error(t, ValidateFactorLevels(levels, false, 2))
}

func TestValidateFactorCodesRange(t *testing.T) {
	g := hdf5x.NewFakeGroup()
	codes := g.Dataset("codes").Ints([]int64{0, 1, 2, 1})
	require.NoError(t, ValidateFactorCodes(codes, 3, false, 0, 3))

	bad := g.Dataset("bad").Ints([]int64{0, 3})
	err := ValidateFactorCodes(bad, 3, false, 0, 3)
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}

func TestValidateFactorCodesPlaceholder(t *testing.T) {
	g := hdf5x.NewFakeGroup()
	codes := g.Dataset("codes").Ints([]int64{0, -1, 1})
	require.Error(t, ValidateFactorCodes(codes, 2, false, 0, 3))
	require.NoError(t, ValidateFactorCodes(codes, 2, true, -1, 3))
}
