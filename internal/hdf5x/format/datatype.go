package format

import "fmt"

// Datatype classes from the datatype message.
const (
	ClassFixed    = 0
	ClassFloat    = 1
	ClassTime     = 2
	ClassString   = 3
	ClassBitfield = 4
	ClassOpaque   = 5
	ClassCompound = 6
	ClassRef      = 7
	ClassEnum     = 8
	ClassVlen     = 9
	ClassArray    = 10
)

// String padding kinds for fixed-length strings.
const (
	PadNullTerm = 0
	PadNullPad  = 1
	PadSpacePad = 2
)

// Datatype is a parsed datatype message: the class, element size, and
// the per-class properties the validators care about.
type Datatype struct {
	Class      int
	Size       int  // element size in bytes
	BigEndian  bool // byte order of fixed/float elements
	Signed     bool // fixed-point only
	StringPad  int  // fixed-length string only
	VlenString bool // class Vlen with a string base type
}

// ParseDatatype parses a datatype message body.
func ParseDatatype(f *File, data []byte) (*Datatype, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("datatype message too short: %d bytes", len(data))
	}
	class := int(data[0] & 0x0F)
	version := int(data[0] >> 4)
	if version < 1 || version > 3 {
		return nil, fmt.Errorf("unsupported datatype message version %d", version)
	}
	bits0 := data[1]
	size := int(f.ByteOrder.Uint32(data[4:8]))

	dt := &Datatype{Class: class, Size: size}
	switch class {
	case ClassFixed:
		dt.BigEndian = bits0&0x01 != 0
		dt.Signed = bits0&0x08 != 0
	case ClassFloat:
		dt.BigEndian = bits0&0x01 != 0
	case ClassString:
		dt.StringPad = int(bits0 & 0x0F)
	case ClassVlen:
		dt.VlenString = bits0&0x0F == 1
	}
	return dt, nil
}

// IsVariableString reports whether elements are variable-length strings
// stored as global-heap references.
func (d *Datatype) IsVariableString() bool {
	return d.Class == ClassVlen && d.VlenString
}

// IsFixedString reports whether elements are in-place fixed-size strings.
func (d *Datatype) IsFixedString() bool {
	return d.Class == ClassString
}

// ParseDataspace parses a dataspace message body into its dimension
// vector (fastest-varying last, as stored). A scalar dataspace yields an
// empty vector.
func ParseDataspace(f *File, data []byte) ([]uint64, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("dataspace message too short: %d bytes", len(data))
	}
	version := data[0]
	rank := int(data[1])
	var pos int
	switch version {
	case 1:
		pos = 8
	case 2:
		pos = 4
	default:
		return nil, fmt.Errorf("unsupported dataspace message version %d", version)
	}
	dims := make([]uint64, rank)
	for d := 0; d < rank; d++ {
		v, err := f.lengthAt(data, pos)
		if err != nil {
			return nil, err
		}
		dims[d] = v
		pos += f.LengthSize
	}
	return dims, nil
}

// decodeFixedString strips the declared padding from an in-place string
// element.
func decodeFixedString(raw []byte, pad int) string {
	switch pad {
	case PadSpacePad:
		end := len(raw)
		for end > 0 && raw[end-1] == ' ' {
			end--
		}
		return string(raw[:end])
	default:
		for i, b := range raw {
			if b == 0 {
				return string(raw[:i])
			}
		}
		return string(raw)
	}
}
