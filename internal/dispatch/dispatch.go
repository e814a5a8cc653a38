// Package dispatch implements the Dispatcher component: the
// public validate/height/dimensions entry points that read an object's
// metadata, look up its registered function, and wrap any failure with
// provenance ("failed to validate '<type>' object at '<path>'; <inner>").
//
// Validators recurse into embedded objects through this package rather
// than through internal/registry directly, so that validators never need
// to import the package that builds the default dispatch tables (which
// itself imports the validators) - this is what keeps the dependency
// graph acyclic.
package dispatch

import (
	"github.com/takane-go/takane/internal/metadata"
	"github.com/takane-go/takane/pkg/types"
)

func registryOf(opts types.Options) (*types.Registry, error) {
	if opts.Registry == nil {
		return nil, types.NewError(types.ErrKindDispatch, "no registry configured for dispatch")
	}
	return opts.Registry, nil
}

// Validate reads the object's metadata and invokes its registered
// validate function, wrapping any error with the standard context
// prefix.
func Validate(path string, opts types.Options) error {
	reg, err := registryOf(opts)
	if err != nil {
		return err
	}
	md, err := metadata.Read(path)
	if err != nil {
		return err
	}
	fn, ok := reg.Validate(md.Type)
	if !ok {
		return types.NewError(types.ErrKindDispatch, "no registered validate function for object type '%s' at '%s'", md.Type, path)
	}
	if err := fn(path, md, opts); err != nil {
		return types.WrapContext(md.Type, path, err)
	}
	return nil
}

// Height reads the object's metadata and invokes its registered height
// function.
func Height(path string, opts types.Options) (int64, error) {
	reg, err := registryOf(opts)
	if err != nil {
		return 0, err
	}
	md, err := metadata.Read(path)
	if err != nil {
		return 0, err
	}
	fn, ok := reg.Height(md.Type)
	if !ok {
		return 0, types.NewError(types.ErrKindDispatch, "no registered height function for object type '%s' at '%s'", md.Type, path)
	}
	h, err := fn(path, md, opts)
	if err != nil {
		return 0, types.WrapContext(md.Type, path, err)
	}
	return h, nil
}

// Dimensions reads the object's metadata and invokes its registered
// dimensions function.
func Dimensions(path string, opts types.Options) ([]int64, error) {
	reg, err := registryOf(opts)
	if err != nil {
		return nil, err
	}
	md, err := metadata.Read(path)
	if err != nil {
		return nil, err
	}
	fn, ok := reg.Dimensions(md.Type)
	if !ok {
		return nil, types.NewError(types.ErrKindDispatch, "no registered dimensions function for object type '%s' at '%s'", md.Type, path)
	}
	d, err := fn(path, md, opts)
	if err != nil {
		return nil, types.WrapContext(md.Type, path, err)
	}
	return d, nil
}

// ValidateChild validates the object at childPath and confirms its
// declared type either equals or derives from wantType (when
// wantType != "") or
// satisfies wantIface (when wantIface != ""), mirroring the
// ownership and type-match checks every composite validator performs
// before trusting a subdirectory.
func ValidateChild(childPath, wantType, wantIface string, opts types.Options) error {
	reg, err := registryOf(opts)
	if err != nil {
		return err
	}
	md, err := metadata.Read(childPath)
	if err != nil {
		return err
	}
	if wantType != "" && !reg.DerivedFrom(md.Type, wantType) {
		return types.NewError(types.ErrKindDispatch, "expected object at '%s' to be (or derive from) type '%s', got '%s'", childPath, wantType, md.Type)
	}
	if wantIface != "" && !reg.SatisfiesInterface(md.Type, wantIface) {
		return types.NewError(types.ErrKindDispatch, "expected object at '%s' to satisfy the %s interface, got type '%s'", childPath, wantIface, md.Type)
	}
	return Validate(childPath, opts)
}
