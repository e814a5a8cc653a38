package jsonval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds(t *testing.T) {
	for in, want := range map[string]Kind{
		`null`:    KindNull,
		`true`:    KindBool,
		`1.5`:     KindNumber,
		`"hi"`:    KindString,
		`[1,2]`:   KindArray,
		`{"a":1}`: KindObject,
	} {
		v, err := Parse([]byte(in))
		require.NoError(t, err, "input %s", in)
		assert.Equal(t, want, v.Kind(), "input %s", in)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte(`{"unterminated`))
	require.Error(t, err)
}

func TestFieldAndIndex(t *testing.T) {
	v, err := Parse([]byte(`{"name":"x","values":[10,20,30]}`))
	require.NoError(t, err)

	name, ok := v.Field("name")
	require.True(t, ok)
	s, ok := name.String()
	require.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = v.Field("absent")
	assert.False(t, ok)

	values, ok := v.Field("values")
	require.True(t, ok)
	assert.Equal(t, 3, values.Len())
	el, ok := values.Index(1)
	require.True(t, ok)
	n, ok := el.Int()
	require.True(t, ok)
	assert.Equal(t, 20, n)

	_, ok = values.Index(5)
	assert.False(t, ok)
}

func TestStringArray(t *testing.T) {
	v, err := Parse([]byte(`["a","b"]`))
	require.NoError(t, err)
	arr, err := v.StringArray()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, arr)

	v, err = Parse([]byte(`["a",1]`))
	require.NoError(t, err)
	_, err = v.StringArray()
	require.Error(t, err)
}

func TestZeroValueIsInvalid(t *testing.T) {
	var v Value
	assert.Equal(t, KindInvalid, v.Kind())
	assert.False(t, v.IsObject())
}
