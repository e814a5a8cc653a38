// Package takane validates the hierarchical on-disk object store used by
// the takane format: directories that declare a type in an OBJECT file
// and carry type-specific payload files. The three public questions are
// Validate (is this directory a structurally and semantically valid
// object of its declared type), Height (its leading extent when embedded
// as a column of a vertical container), and Dimensions (its full extent
// vector).
//
// Validation is a pure read: nothing on disk is created or mutated. A
// parent object's validity depends on recursively validating and
// measuring the subdirectories it claims, so a single Validate call on a
// top-level experiment walks the whole tree beneath it.
//
// Callers wanting custom object types register them with the Register*
// functions before calling the entry points. The registries are
// process-wide configuration: mutating them concurrently with in-flight
// Validate calls is undefined, so set them up once at startup.
package takane

import (
	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/registry"
	"github.com/takane-go/takane/pkg/types"
)

var (
	defaults  = registry.Default()
	overrides = types.NewRegistry()
)

func withRegistry(opts types.Options) types.Options {
	if opts.Registry == nil {
		opts.Registry = types.Merged(defaults, overrides)
	}
	return opts.WithDefaults()
}

// Validate checks that the directory at path contains a valid object of
// its declared type. The returned error carries the full context chain:
// "failed to validate '<type>' object at '<path>'; <inner>".
func Validate(path string, opts types.Options) error {
	return dispatch.Validate(path, withRegistry(opts))
}

// Height reports the leading extent of the object at path.
func Height(path string, opts types.Options) (int64, error) {
	return dispatch.Height(path, withRegistry(opts))
}

// Dimensions reports the full extent vector of the object at path.
func Dimensions(path string, opts types.Options) ([]int64, error) {
	return dispatch.Dimensions(path, withRegistry(opts))
}

// RegisterValidate installs a validate function for typeName, overriding
// any default.
func RegisterValidate(typeName string, fn types.ValidateFunc) {
	overrides.RegisterValidate(typeName, fn)
}

// RegisterHeight installs a height function for typeName.
func RegisterHeight(typeName string, fn types.HeightFunc) {
	overrides.RegisterHeight(typeName, fn)
}

// RegisterDimensions installs a dimensions function for typeName.
func RegisterDimensions(typeName string, fn types.DimensionsFunc) {
	overrides.RegisterDimensions(typeName, fn)
}

// RegisterDerivation records that derived derives from base. The relation
// is consulted pre-closed, so registering a multi-step chain means
// registering each transitive pair.
func RegisterDerivation(base, derived string) {
	overrides.RegisterDerivation(base, derived)
}

// RegisterInterface records that typeName satisfies the named interface
// (DATA_FRAME, SIMPLE_LIST, or SUMMARIZED_EXPERIMENT).
func RegisterInterface(iface, typeName string) {
	overrides.RegisterInterface(iface, typeName)
}

// DerivedFrom reports whether typeName derives (transitively) from base,
// consulting both the default and user-registered tables.
func DerivedFrom(typeName, base string) bool {
	return types.Merged(defaults, overrides).DerivedFrom(typeName, base)
}

// SatisfiesInterface reports whether typeName satisfies iface, consulting
// both the default and user-registered tables.
func SatisfiesInterface(typeName, iface string) bool {
	return types.Merged(defaults, overrides).SatisfiesInterface(typeName, iface)
}
