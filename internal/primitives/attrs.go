package primitives

import (
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/pkg/types"
)

// FetchStringAttr reads a required string attribute off g, failing with
// ErrKindValue if it is absent or not string-typed. Mirrors
// fetch_format_attribute's "must be present" mode.
func FetchStringAttr(g hdf5x.Group, name string) (string, error) {
	a, ok := g.Attr(name)
	if !ok {
		return "", types.NewError(types.ErrKindValue, "expected a '%s' attribute", name)
	}
	s, ok := a.AsString()
	if !ok {
		return "", types.NewError(types.ErrKindValue, "'%s' attribute should be a string", name)
	}
	return s, nil
}

// OptionalStringAttr reads an optional string attribute, returning def
// when it is absent.
func OptionalStringAttr(g hdf5x.Group, name, def string) (string, error) {
	a, ok := g.Attr(name)
	if !ok {
		return def, nil
	}
	s, ok := a.AsString()
	if !ok {
		return "", types.NewError(types.ErrKindValue, "'%s' attribute should be a string", name)
	}
	return s, nil
}

// FetchIntAttr reads a required integer attribute off g, failing with
// ErrKindValue if it is absent or not integer-typed.
func FetchIntAttr(g hdf5x.Group, name string) (int64, error) {
	a, ok := g.Attr(name)
	if !ok {
		return 0, types.NewError(types.ErrKindValue, "expected a '%s' attribute", name)
	}
	v, ok := a.AsInt()
	if !ok {
		return 0, types.NewError(types.ErrKindValue, "'%s' attribute should be an integer", name)
	}
	return v, nil
}

// CheckOrderedAttribute reads the boolean-as-integer "ordered" attribute
// used by factor-like types, defaulting to false when absent.
func CheckOrderedAttribute(g hdf5x.Group) (bool, error) {
	a, ok := g.Attr("ordered")
	if !ok {
		return false, nil
	}
	v, ok := a.AsInt()
	if !ok {
		return false, types.NewError(types.ErrKindValue, "'ordered' attribute should be an integer")
	}
	return v != 0, nil
}

// DatasetStringAttr is the Dataset-level analogue of FetchStringAttr, used
// for per-dataset attributes such as a placeholder missing-value marker.
func DatasetStringAttr(ds hdf5x.Dataset, name string) (string, bool) {
	a, ok := ds.Attr(name)
	if !ok {
		return "", false
	}
	return a.AsString()
}

// DatasetIntAttr is the Dataset-level analogue for integer attributes.
func DatasetIntAttr(ds hdf5x.Dataset, name string) (int64, bool) {
	a, ok := ds.Attr(name)
	if !ok {
		return 0, false
	}
	return a.AsInt()
}
