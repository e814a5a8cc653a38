// Package atomic implements the leaf object validators:
// atomic_vector, string_factor, sequence_information, dense_array,
// compressed_sparse_matrix, genomic_ranges, data_frame, simple_list, and
// sequence_string_set. These are the types every composite and
// experiment validator ultimately bottoms out in.
package atomic

import (
	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

// ElementType is the scalar datatype family shared by atomic_vector,
// dense_array, compressed_sparse_matrix, and data_frame columns.
type ElementType int

const (
	Integer ElementType = iota
	Boolean
	Number
	String
)

func (t ElementType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// ParseElementType maps a "type" attribute value to an ElementType,
// optionally rejecting string (compressed_sparse_matrix has no string
// element type).
func ParseElementType(s string, allowString bool) (ElementType, error) {
	switch s {
	case "integer":
		return Integer, nil
	case "boolean":
		return Boolean, nil
	case "number":
		return Number, nil
	case "string":
		if !allowString {
			return 0, types.NewError(types.ErrKindValue, "string is not a valid element type here")
		}
		return String, nil
	default:
		return 0, types.NewError(types.ErrKindValue, "unknown element type '%s'", s)
	}
}

// ValidateNumericClass confirms ds's HDF5 datatype class and bit width
// match elemType: integer/boolean fit signed 32-bit, number fits 64-bit
// float.
func ValidateNumericClass(ds hdf5x.Dataset, elemType ElementType) error {
	switch elemType {
	case Integer, Boolean:
		if ds.Class() != hdf5x.ClassInteger {
			return types.NewError(types.ErrKindValue, "expected an integer dataset for a %s value", elemType)
		}
		if !ds.FitsSignedInt(32) {
			return types.NewError(types.ErrKindValue, "%s values must fit in a signed 32-bit integer", elemType)
		}
	case Number:
		if ds.Class() != hdf5x.ClassFloat {
			return types.NewError(types.ErrKindValue, "expected a floating-point dataset for a number value")
		}
		if !ds.FitsFloat(64) {
			return types.NewError(types.ErrKindValue, "number values must fit in a 64-bit float")
		}
	default:
		return types.NewError(types.ErrKindValue, "unexpected element type %s for a numeric dataset", elemType)
	}
	return nil
}

// ValidateStringValues scans a string dataset rejecting null variable-
// length pointers unconditionally, and checking the declared format
// (date/date-time) on every non-placeholder element.
func ValidateStringValues(ds hdf5x.Dataset, format primitives.StringFormat, hasPlaceholder bool, placeholder string, blockSize int) error {
	var badNull bool
	err := ds.IterateString(blockSize, func(block []hdf5x.NullableString) error {
		for _, v := range block {
			if v.Null {
				badNull = true
				return errStop
			}
		}
		return nil
	})
	if err != nil && err != errStop {
		return err
	}
	if badNull {
		return types.NewError(types.ErrKindValue, "string dataset contains a null pointer")
	}
	return primitives.ValidateStringDataset(ds, format, hasPlaceholder, placeholder, blockSize)
}

var errStop = types.NewError(types.ErrKindPropagated, "scan stopped early")

// ResolvePlaceholder reads an optional "missing-value-placeholder"
// attribute on ds, confirming (when present) that its class matches
// elemType. For string element types it returns the placeholder value as
// a string; integer and boolean placeholders come back in i64 and number
// placeholders in f64.
func ResolvePlaceholder(ds hdf5x.Dataset, elemType ElementType) (hasPlaceholder bool, str string, i64 int64, f64 float64, err error) {
	a, ok := ds.Attr("missing-value-placeholder")
	if !ok {
		return false, "", 0, 0, nil
	}
	switch elemType {
	case String:
		s, ok := a.AsString()
		if !ok {
			return false, "", 0, 0, types.NewError(types.ErrKindValue, "'missing-value-placeholder' should be a string to match the dataset's type")
		}
		return true, s, 0, 0, nil
	case Integer, Boolean:
		v, ok := a.AsInt()
		if !ok {
			return false, "", 0, 0, types.NewError(types.ErrKindValue, "'missing-value-placeholder' should be an integer to match the dataset's type")
		}
		return true, "", v, 0, nil
	case Number:
		if v, ok := a.AsFloat(); ok {
			return true, "", 0, v, nil
		}
		if v, ok := a.AsInt(); ok {
			return true, "", 0, float64(v), nil
		}
		return false, "", 0, 0, types.NewError(types.ErrKindValue, "'missing-value-placeholder' should be numeric to match the dataset's type")
	default:
		return false, "", 0, 0, nil
	}
}
