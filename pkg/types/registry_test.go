package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookups(t *testing.T) {
	r := NewRegistry()
	r.RegisterValidate("foo", func(string, ObjectMetadata, Options) error { return nil })

	_, ok := r.Validate("foo")
	assert.True(t, ok)
	_, ok = r.Validate("bar")
	assert.False(t, ok)
	_, ok = r.Height("foo")
	assert.False(t, ok)
}

func TestDerivedFrom(t *testing.T) {
	r := NewRegistry()
	r.RegisterDerivation("base", "child")

	assert.True(t, r.DerivedFrom("child", "base"))
	assert.True(t, r.DerivedFrom("base", "base"), "a type derives from itself")
	assert.False(t, r.DerivedFrom("base", "child"))
	assert.False(t, r.DerivedFrom("stranger", "base"))
}

func TestSatisfiesInterfaceViaDerivation(t *testing.T) {
	r := NewRegistry()
	r.RegisterInterface(InterfaceSummarizedExperiment, "summarized_experiment")
	r.RegisterDerivation("summarized_experiment", "single_cell_experiment")

	assert.True(t, r.SatisfiesInterface("summarized_experiment", InterfaceSummarizedExperiment))
	assert.True(t, r.SatisfiesInterface("single_cell_experiment", InterfaceSummarizedExperiment))
	assert.False(t, r.SatisfiesInterface("atomic_vector", InterfaceSummarizedExperiment))
	assert.False(t, r.SatisfiesInterface("summarized_experiment", InterfaceDataFrame))
}

func TestMergedPrecedence(t *testing.T) {
	calls := []string{}
	base := NewRegistry()
	base.RegisterValidate("foo", func(string, ObjectMetadata, Options) error {
		calls = append(calls, "base")
		return nil
	})
	base.RegisterValidate("bar", func(string, ObjectMetadata, Options) error {
		calls = append(calls, "bar")
		return nil
	})

	override := NewRegistry()
	override.RegisterValidate("foo", func(string, ObjectMetadata, Options) error {
		calls = append(calls, "override")
		return nil
	})

	merged := Merged(base, override)
	fn, ok := merged.Validate("foo")
	require.True(t, ok)
	require.NoError(t, fn("", ObjectMetadata{}, Options{}))
	fn, ok = merged.Validate("bar")
	require.True(t, ok)
	require.NoError(t, fn("", ObjectMetadata{}, Options{}))
	assert.Equal(t, []string{"override", "bar"}, calls)

	// Merging never mutates the inputs.
	_, ok = base.Validate("foo")
	require.True(t, ok)
	base.validate["foo"](``, ObjectMetadata{}, Options{})
	assert.Equal(t, []string{"override", "bar", "base"}, calls)
}

func TestMergedCombinesRelations(t *testing.T) {
	base := NewRegistry()
	base.RegisterDerivation("a", "b")
	override := NewRegistry()
	override.RegisterDerivation("a", "c")

	merged := Merged(base, override)
	assert.True(t, merged.DerivedFrom("b", "a"))
	assert.True(t, merged.DerivedFrom("c", "a"))
	assert.False(t, base.DerivedFrom("c", "a"))
}
