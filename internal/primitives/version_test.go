package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("1.0")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 0}, v)

	v, err = ParseVersion("2")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2}, v)

	v, err = ParseVersion("1.12")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 12}, v)
}

func TestParseVersionRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "one", "-1", "1.-2", "1.x", ".5"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestVersionAtLeast(t *testing.T) {
	v := Version{Major: 1, Minor: 3}
	assert.True(t, v.AtLeast(1, 0))
	assert.True(t, v.AtLeast(1, 3))
	assert.False(t, v.AtLeast(1, 4))
	assert.False(t, v.AtLeast(2, 0))
	assert.True(t, v.AtLeast(0, 9))
}
