package format

import "fmt"

// Attribute is a parsed attribute message: name, element type, shape,
// and the in-message value bytes.
type Attribute struct {
	Name     string
	Datatype *Datatype
	Dims     []uint64
	Data     []byte
}

// ParseAttribute parses an attribute message body. Message versions 1-3
// are handled; version 1 pads the name/datatype/dataspace regions to
// 8-byte multiples, later versions store them packed (version 3 adds a
// name-encoding byte). Shared datatypes/dataspaces (version 2+ flag
// bits) are not supported.
func ParseAttribute(f *File, data []byte) (*Attribute, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("attribute message too short: %d bytes", len(data))
	}
	version := data[0]
	flags := data[1]
	if version < 1 || version > 3 {
		return nil, fmt.Errorf("unsupported attribute message version %d", version)
	}
	if version >= 2 && flags&0x03 != 0 {
		return nil, fmt.Errorf("shared attribute datatypes/dataspaces are not supported")
	}

	nameSize := int(f.ByteOrder.Uint16(data[2:4]))
	datatypeSize := int(f.ByteOrder.Uint16(data[4:6]))
	dataspaceSize := int(f.ByteOrder.Uint16(data[6:8]))
	pos := 8
	if version >= 3 {
		pos++ // name character-set encoding
	}

	pad := func(n int) int {
		if version == 1 {
			return (n + 7) &^ 7
		}
		return n
	}

	attr := &Attribute{}
	if pos+nameSize > len(data) {
		return nil, fmt.Errorf("attribute name overruns the message")
	}
	name := data[pos : pos+nameSize]
	for i, b := range name {
		if b == 0 {
			name = name[:i]
			break
		}
	}
	attr.Name = string(name)
	pos += pad(nameSize)

	if pos+datatypeSize > len(data) {
		return nil, fmt.Errorf("attribute datatype overruns the message")
	}
	dt, err := ParseDatatype(f, data[pos:pos+datatypeSize])
	if err != nil {
		return nil, fmt.Errorf("attribute '%s': %w", attr.Name, err)
	}
	attr.Datatype = dt
	pos += pad(datatypeSize)

	if pos+dataspaceSize > len(data) {
		return nil, fmt.Errorf("attribute dataspace overruns the message")
	}
	dims, err := ParseDataspace(f, data[pos:pos+dataspaceSize])
	if err != nil {
		return nil, fmt.Errorf("attribute '%s': %w", attr.Name, err)
	}
	attr.Dims = dims
	pos += pad(dataspaceSize)

	if pos < len(data) {
		attr.Data = append([]byte(nil), data[pos:]...)
	}
	return attr, nil
}

// IsScalar reports whether the attribute holds a single element.
func (a *Attribute) IsScalar() bool {
	if len(a.Dims) == 0 {
		return true
	}
	n := uint64(1)
	for _, d := range a.Dims {
		n *= d
	}
	return n == 1
}

// StringValue decodes a scalar string attribute, resolving a
// variable-length value through the global heap.
func (a *Attribute) StringValue(f *File) (string, bool) {
	if !a.IsScalar() || a.Datatype == nil {
		return "", false
	}
	switch {
	case a.Datatype.IsFixedString():
		if len(a.Data) < a.Datatype.Size {
			return "", false
		}
		return decodeFixedString(a.Data[:a.Datatype.Size], a.Datatype.StringPad), true
	case a.Datatype.IsVariableString():
		s, null, err := f.readVlenString(a.Data)
		if err != nil || null {
			return "", false
		}
		return s, true
	default:
		return "", false
	}
}

// IntValue decodes a scalar fixed-point attribute.
func (a *Attribute) IntValue(f *File) (int64, bool) {
	if !a.IsScalar() || a.Datatype == nil || a.Datatype.Class != ClassFixed {
		return 0, false
	}
	if len(a.Data) < a.Datatype.Size {
		return 0, false
	}
	return decodeFixedInt(a.Data[:a.Datatype.Size], a.Datatype), true
}

// FloatValue decodes a scalar floating-point attribute.
func (a *Attribute) FloatValue(f *File) (float64, bool) {
	if !a.IsScalar() || a.Datatype == nil || a.Datatype.Class != ClassFloat {
		return 0, false
	}
	if len(a.Data) < a.Datatype.Size {
		return 0, false
	}
	return decodeFloat(a.Data[:a.Datatype.Size], a.Datatype), true
}
