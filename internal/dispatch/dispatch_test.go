package dispatch_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/mockobj"
	"github.com/takane-go/takane/pkg/types"
)

func TestValidateUnknownType(t *testing.T) {
	dir := t.TempDir()
	mockobj.WriteOBJECT(t, dir, "flux_capacitor", nil)

	err := dispatch.Validate(dir, mockobj.TestOptions())
	require.Error(t, err)
	var te *types.Error
	require.True(t, errors.As(err, &te))
	require.Equal(t, types.ErrKindDispatch, te.Kind)
	require.Contains(t, err.Error(), "no registered validate function for object type 'flux_capacitor'")
}

func TestHeightUnknownType(t *testing.T) {
	dir := t.TempDir()
	mockobj.WriteOBJECT(t, dir, "flux_capacitor", nil)

	_, err := dispatch.Height(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no registered height function")
}

func TestDimensionsUnknownForType(t *testing.T) {
	dir := t.TempDir()
	// atomic_vector has a height but no dimensions implementation.
	mockobj.IntVector(t, dir, 3, false)

	_, err := dispatch.Dimensions(dir, mockobj.TestOptions())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no registered dimensions function")
}

func TestNilRegistryRejected(t *testing.T) {
	dir := t.TempDir()
	mockobj.WriteOBJECT(t, dir, "atomic_vector", nil)

	err := dispatch.Validate(dir, types.Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no registry configured")
}

func TestUserOverrideTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	mockobj.IntVector(t, dir, 3, false)

	opts := mockobj.TestOptions()
	override := types.NewRegistry()
	sentinel := types.NewError(types.ErrKindValue, "override wins")
	override.RegisterValidate("atomic_vector", func(string, types.ObjectMetadata, types.Options) error {
		return sentinel
	})
	opts.Registry = types.Merged(opts.Registry, override)

	err := dispatch.Validate(dir, opts)
	require.Error(t, err)
	require.True(t, errors.Is(err, sentinel))
}

func TestValidateChildTypeAndInterface(t *testing.T) {
	dir := t.TempDir()
	mockobj.IntVector(t, dir, 3, false)
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.ValidateChild(dir, "atomic_vector", "", opts))

	err := dispatch.ValidateChild(dir, "data_frame", "", opts)
	require.Error(t, err)
	var te *types.Error
	require.True(t, errors.As(err, &te))
	require.Equal(t, types.ErrKindDispatch, te.Kind)

	err = dispatch.ValidateChild(dir, "", types.InterfaceDataFrame, opts)
	require.Error(t, err)
}

// Validation is pure: two consecutive calls on the same directory with
// the same options produce identical outcomes.
func TestValidateDeterministic(t *testing.T) {
	dir := t.TempDir()
	mockobj.IntVector(t, dir, 10, true)
	opts := mockobj.TestOptions()

	require.NoError(t, dispatch.Validate(dir, opts))
	require.NoError(t, dispatch.Validate(dir, opts))

	h1, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	h2, err := dispatch.Height(dir, opts)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}
