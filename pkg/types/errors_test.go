package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapContextPreservesKind(t *testing.T) {
	inner := NewError(ErrKindValue, "code '%d' out of range", 7)
	wrapped := WrapContext("string_factor", "/data/sf", inner)

	var te *Error
	require.True(t, errors.As(wrapped, &te))
	assert.Equal(t, ErrKindValue, te.Kind)
	assert.Equal(t, "failed to validate 'string_factor' object at '/data/sf'; code '7' out of range", wrapped.Error())
	assert.True(t, errors.Is(wrapped, inner))
}

func TestWrapContextForeignError(t *testing.T) {
	inner := errors.New("disk exploded")
	wrapped := WrapContext("bam_file", "/x", inner)

	var te *Error
	require.True(t, errors.As(wrapped, &te))
	assert.Equal(t, ErrKindPropagated, te.Kind)
	assert.True(t, errors.Is(wrapped, inner))
}

func TestWrapContextNil(t *testing.T) {
	assert.NoError(t, WrapContext("foo", "/x", nil))
}

func TestErrKindStrings(t *testing.T) {
	assert.Equal(t, "StructureError", ErrKindStructure.String())
	assert.Equal(t, "ValueError", ErrKindValue.String())
	assert.Equal(t, "VersionError", ErrKindVersion.String())
	assert.Equal(t, "DispatchError", ErrKindDispatch.String())
	assert.Equal(t, "PropagatedError", ErrKindPropagated.String())
}
