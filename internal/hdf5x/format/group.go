package format

import "fmt"

// Children resolves a group object's immediate children to their object
// header addresses, walking the symbol-table B-tree and local heap for
// old-style groups or collecting compact link messages for new-style
// ones.
func Children(f *File, obj *Object) (map[string]uint64, error) {
	if obj.HasSymbols {
		return symbolTableChildren(f, obj.SymbolBTree, obj.SymbolHeap)
	}
	if obj.Links != nil {
		return obj.Links, nil
	}
	return map[string]uint64{}, nil
}

func symbolTableChildren(f *File, btreeAddr, heapAddr uint64) (map[string]uint64, error) {
	heap, err := readLocalHeap(f, heapAddr)
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64)
	if err := walkGroupBTree(f, btreeAddr, heap, out); err != nil {
		return nil, err
	}
	return out, nil
}

// walkGroupBTree walks a version-1 B-tree of node type 0, whose leaf
// children are SNOD symbol-table nodes.
func walkGroupBTree(f *File, addr uint64, heap *localHeap, out map[string]uint64) error {
	head, err := f.readAt(addr, 8+2*f.OffsetSize)
	if err != nil {
		return err
	}
	if string(head[0:4]) != "TREE" {
		return fmt.Errorf("no B-tree node at 0x%X", addr)
	}
	if head[4] != 0 {
		return fmt.Errorf("B-tree node at 0x%X has type %d, expected a group node", addr, head[4])
	}
	level := int(head[5])
	entries := int(f.ByteOrder.Uint16(head[6:8]))

	// Keys and children interleave: key0 child0 key1 ... childN-1 keyN.
	bodyLen := (entries+1)*f.LengthSize + entries*f.OffsetSize
	body, err := f.readAt(addr+uint64(8+2*f.OffsetSize), bodyLen)
	if err != nil {
		return err
	}
	pos := f.LengthSize
	for i := 0; i < entries; i++ {
		child, err := f.offsetAt(body, pos)
		if err != nil {
			return err
		}
		pos += f.OffsetSize + f.LengthSize
		if level > 0 {
			if err := walkGroupBTree(f, child, heap, out); err != nil {
				return err
			}
			continue
		}
		if err := readSymbolNode(f, child, heap, out); err != nil {
			return err
		}
	}
	return nil
}

func readSymbolNode(f *File, addr uint64, heap *localHeap, out map[string]uint64) error {
	head, err := f.readAt(addr, 8)
	if err != nil {
		return err
	}
	if string(head[0:4]) != "SNOD" {
		return fmt.Errorf("no symbol-table node at 0x%X", addr)
	}
	nsyms := int(f.ByteOrder.Uint16(head[6:8]))

	entrySize := 2*f.OffsetSize + 24
	body, err := f.readAt(addr+8, nsyms*entrySize)
	if err != nil {
		return err
	}
	for i := 0; i < nsyms; i++ {
		base := i * entrySize
		nameOff, err := f.offsetAt(body, base)
		if err != nil {
			return err
		}
		objAddr, err := f.offsetAt(body, base+f.OffsetSize)
		if err != nil {
			return err
		}
		name, err := heap.stringAt(f, nameOff)
		if err != nil {
			return err
		}
		out[name] = objAddr
	}
	return nil
}

// localHeap is a parsed local heap header; names are read lazily from
// its data segment.
type localHeap struct {
	dataAddr uint64
	dataSize uint64
}

func readLocalHeap(f *File, addr uint64) (*localHeap, error) {
	head, err := f.readAt(addr, 8+2*f.LengthSize+f.OffsetSize)
	if err != nil {
		return nil, err
	}
	if string(head[0:4]) != "HEAP" {
		return nil, fmt.Errorf("no local heap at 0x%X", addr)
	}
	size, err := f.lengthAt(head, 8)
	if err != nil {
		return nil, err
	}
	dataAddr, err := f.offsetAt(head, 8+2*f.LengthSize)
	if err != nil {
		return nil, err
	}
	return &localHeap{dataAddr: dataAddr, dataSize: size}, nil
}

// stringAt reads the NUL-terminated name at the given heap offset.
func (h *localHeap) stringAt(f *File, offset uint64) (string, error) {
	if offset >= h.dataSize {
		return "", fmt.Errorf("heap offset %d outside a %d-byte heap", offset, h.dataSize)
	}
	remaining := h.dataSize - offset
	const block = 64
	var name []byte
	for remaining > 0 {
		n := int(remaining)
		if n > block {
			n = block
		}
		raw, err := f.readAt(h.dataAddr+offset+uint64(len(name)), n)
		if err != nil {
			return "", err
		}
		for i, b := range raw {
			if b == 0 {
				return string(append(name, raw[:i]...)), nil
			}
		}
		name = append(name, raw...)
		remaining -= uint64(n)
	}
	return "", fmt.Errorf("unterminated name at heap offset %d", offset)
}
