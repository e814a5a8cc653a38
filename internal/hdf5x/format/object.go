package format

import "fmt"

// Object is a parsed object header: the messages every consumer needs,
// decoded once.
type Object struct {
	Addr       uint64
	Attributes []*Attribute
	Datatype   *Datatype
	Dims       []uint64
	HasDims    bool
	Layout     *Layout
	Filters    []Filter

	// Group linkage: old-style symbol table, or compact link messages.
	SymbolBTree uint64
	SymbolHeap  uint64
	HasSymbols  bool
	Links       map[string]uint64
}

// IsDataset reports whether the object carries a datatype + layout pair.
func (o *Object) IsDataset() bool {
	return o.Datatype != nil && o.Layout != nil
}

// Attr returns the named attribute.
func (o *Object) Attr(name string) (*Attribute, bool) {
	for _, a := range o.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// ReadObject reads and decodes the object header at addr.
func ReadObject(f *File, addr uint64) (*Object, error) {
	messages, err := ReadObjectHeader(f, addr)
	if err != nil {
		return nil, err
	}
	obj := &Object{Addr: addr}
	for _, msg := range messages {
		switch msg.Type {
		case MsgAttribute:
			attr, err := ParseAttribute(f, msg.Data)
			if err != nil {
				return nil, err
			}
			obj.Attributes = append(obj.Attributes, attr)

		case MsgDatatype:
			dt, err := ParseDatatype(f, msg.Data)
			if err != nil {
				return nil, err
			}
			obj.Datatype = dt

		case MsgDataspace:
			dims, err := ParseDataspace(f, msg.Data)
			if err != nil {
				return nil, err
			}
			obj.Dims, obj.HasDims = dims, true

		case MsgDataLayout:
			layout, err := ParseLayout(f, msg.Data)
			if err != nil {
				return nil, err
			}
			obj.Layout = layout

		case MsgFilters:
			filters, err := ParseFilters(f, msg.Data)
			if err != nil {
				return nil, err
			}
			obj.Filters = filters

		case MsgSymbolTable:
			btree, err := f.offsetAt(msg.Data, 0)
			if err != nil {
				return nil, err
			}
			heap, err := f.offsetAt(msg.Data, f.OffsetSize)
			if err != nil {
				return nil, err
			}
			obj.SymbolBTree, obj.SymbolHeap, obj.HasSymbols = btree, heap, true

		case MsgLink:
			name, target, hard, err := parseLink(f, msg.Data)
			if err != nil {
				return nil, err
			}
			if hard {
				if obj.Links == nil {
					obj.Links = make(map[string]uint64)
				}
				obj.Links[name] = target
			}

		case MsgLinkInfo:
			if err := checkLinkInfo(f, msg.Data); err != nil {
				return nil, err
			}

		case MsgAttrInfo:
			if err := checkAttrInfo(f, msg.Data); err != nil {
				return nil, err
			}
		}
	}
	return obj, nil
}

// parseLink parses a link message (version 1). Only hard links carry an
// object address; other link kinds are reported as non-hard and skipped
// by the caller.
func parseLink(f *File, data []byte) (name string, target uint64, hard bool, err error) {
	if len(data) < 2 {
		return "", 0, false, fmt.Errorf("link message too short")
	}
	if data[0] != 1 {
		return "", 0, false, fmt.Errorf("unsupported link message version %d", data[0])
	}
	flags := data[1]
	pos := 2
	linkType := 0
	if flags&0x08 != 0 {
		linkType = int(data[pos])
		pos++
	}
	if flags&0x04 != 0 {
		pos += 8 // creation order
	}
	if flags&0x10 != 0 {
		pos++ // character set
	}
	lenSize := 1 << (flags & 0x3)
	nameLen, err := f.uintAt(data, pos, lenSize)
	if err != nil {
		return "", 0, false, err
	}
	pos += lenSize
	if pos+int(nameLen) > len(data) {
		return "", 0, false, fmt.Errorf("link name overruns the message")
	}
	name = string(data[pos : pos+int(nameLen)])
	pos += int(nameLen)

	if linkType != 0 {
		return name, 0, false, nil
	}
	target, err = f.offsetAt(data, pos)
	if err != nil {
		return "", 0, false, err
	}
	return name, target, true, nil
}

// checkLinkInfo rejects dense link storage (fractal heap + B-tree v2),
// which no consumer of this package produces.
func checkLinkInfo(f *File, data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("link info message too short")
	}
	flags := data[1]
	pos := 2
	if flags&0x01 != 0 {
		pos += 8
	}
	heapAddr, err := f.offsetAt(data, pos)
	if err != nil {
		return err
	}
	if !f.undefinedAddr(heapAddr) && heapAddr != 0 {
		return fmt.Errorf("dense group link storage is not supported")
	}
	return nil
}

// checkAttrInfo rejects dense attribute storage; compact attributes in
// the object header are the only supported form.
func checkAttrInfo(f *File, data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("attribute info message too short")
	}
	flags := data[1]
	pos := 2
	if flags&0x01 != 0 {
		pos += 8
	}
	heapAddr, err := f.offsetAt(data, pos)
	if err != nil {
		return err
	}
	if !f.undefinedAddr(heapAddr) && heapAddr != 0 {
		return fmt.Errorf("dense attribute storage is not supported")
	}
	return nil
}
