package atomic_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

func TestStringFactorValid(t *testing.T) {
	dir := t.TempDir()
	mockobj.StringFactor(t, dir, []string{"alpha", "beta", "gamma"}, []int64{0, 2, 1, 0})
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))
	h, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	require.Equal(t, int64(4), h)
}

func TestStringFactorDuplicateLevels(t *testing.T) {
	dir := t.TempDir()
	mockobj.StringFactor(t, dir, []string{"alpha", "alpha"}, []int64{0})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
	require.Contains(t, err.Error(), "unique")
}

func TestStringFactorCodeOutOfRange(t *testing.T) {
	dir := t.TempDir()
	mockobj.StringFactor(t, dir, []string{"alpha", "beta"}, []int64{0, 5})

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
	require.Contains(t, err.Error(), "out of range")
}

func TestStringFactorPlaceholderCode(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.StringFactor(t, dir, []string{"alpha", "beta"}, []int64{0, -1, 1})
	g.Dataset("codes").SetIntAttr("missing-value-placeholder", -1)

	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))
}

func TestStringFactorOrderedAttribute(t *testing.T) {
	dir := t.TempDir()
	g := mockobj.StringFactor(t, dir, []string{"lo", "hi"}, []int64{0, 1})
	g.SetIntAttr("ordered", 1)
	require.NoError(t, dispatch.Validate(dir, mockobj.TestOptions()))

	// A string-typed ordered attribute is a value violation.
	g.SetStringAttr("ordered", "yes")
	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Equal(t, types.ErrKindValue, kindOf(t, err))
}
