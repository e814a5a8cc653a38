package format

import (
	"encoding/binary"
	"fmt"
	"math"
)

// IterateRaw walks every logical element of a dataset, delivering raw
// element bytes in runs of at most blockElems elements. For chunked
// layouts the runs are produced chunk by chunk in chunk-grid order,
// which coincides with logical order for one-dimensional datasets;
// multi-dimensional consumers see every element exactly once. Chunks
// absent from the index (never written) are delivered as zero bytes,
// matching an all-fill allocation.
func IterateRaw(f *File, obj *Object, blockElems int, fn func(raw []byte) error) error {
	if obj.Datatype == nil || obj.Layout == nil {
		return fmt.Errorf("object at 0x%X is not a dataset", obj.Addr)
	}
	elemSize := obj.Datatype.Size
	if elemSize <= 0 {
		return fmt.Errorf("dataset at 0x%X declares a zero-byte element size", obj.Addr)
	}
	if blockElems <= 0 {
		blockElems = 1
	}
	dims := obj.Dims
	total := uint64(1)
	for _, d := range dims {
		total *= d
	}

	switch obj.Layout.Class {
	case LayoutCompact:
		return emitRuns(obj.Layout.CompactData, elemSize, blockElems, fn)

	case LayoutContiguous:
		if f.undefinedAddr(obj.Layout.DataAddress) {
			return emitZeros(total, elemSize, blockElems, fn)
		}
		var done uint64
		for done < total {
			n := uint64(blockElems)
			if total-done < n {
				n = total - done
			}
			raw, err := f.readAt(obj.Layout.DataAddress+done*uint64(elemSize), int(n)*elemSize)
			if err != nil {
				return err
			}
			if err := fn(raw); err != nil {
				return err
			}
			done += n
		}
		return nil

	case LayoutChunked:
		return iterateChunked(f, obj, dims, elemSize, blockElems, fn)

	default:
		return fmt.Errorf("unsupported data layout class %d", obj.Layout.Class)
	}
}

func emitRuns(raw []byte, elemSize, blockElems int, fn func([]byte) error) error {
	step := blockElems * elemSize
	for pos := 0; pos < len(raw); pos += step {
		end := pos + step
		if end > len(raw) {
			end = len(raw)
		}
		if err := fn(raw[pos:end]); err != nil {
			return err
		}
	}
	return nil
}

func emitZeros(total uint64, elemSize, blockElems int, fn func([]byte) error) error {
	zero := make([]byte, blockElems*elemSize)
	var done uint64
	for done < total {
		n := uint64(blockElems)
		if total-done < n {
			n = total - done
		}
		if err := fn(zero[:int(n)*elemSize]); err != nil {
			return err
		}
		done += n
	}
	return nil
}

// chunkRef locates one stored chunk: its data address, stored byte
// count, and the filter mask from its B-tree key.
type chunkRef struct {
	addr uint64
	size uint32
	mask uint32
}

func iterateChunked(f *File, obj *Object, dims []uint64, elemSize, blockElems int, fn func([]byte) error) error {
	chunkDims := obj.Layout.ChunkDims
	if len(chunkDims) != len(dims)+1 {
		return fmt.Errorf("chunk shape has %d entries for a rank-%d dataset", len(chunkDims), len(dims))
	}
	chunkDims = chunkDims[:len(dims)]
	for _, c := range chunkDims {
		if c == 0 {
			return fmt.Errorf("chunk shape contains a zero extent")
		}
	}

	chunks := make(map[string]chunkRef)
	if !f.undefinedAddr(obj.Layout.BTreeAddress) {
		if err := walkChunkBTree(f, obj.Layout.BTreeAddress, len(dims)+1, chunks); err != nil {
			return err
		}
	}

	chunkElems := uint64(1)
	for _, c := range chunkDims {
		chunkElems *= c
	}

	// Walk the chunk grid in row-major order.
	grid := make([]uint64, len(dims))
	for d := range grid {
		grid[d] = (dims[d] + chunkDims[d] - 1) / chunkDims[d]
	}
	cell := make([]uint64, len(dims))
	for {
		offset := make([]uint64, len(dims))
		for d := range offset {
			offset[d] = cell[d] * chunkDims[d]
		}

		var raw []byte
		if ref, ok := chunks[chunkKey(offset)]; ok {
			stored, err := f.readAt(ref.addr, int(ref.size))
			if err != nil {
				return err
			}
			raw, err = applyFilters(stored, obj.Filters, ref.mask, elemSize)
			if err != nil {
				return err
			}
			if uint64(len(raw)) < chunkElems*uint64(elemSize) {
				return fmt.Errorf("chunk at 0x%X holds %d bytes, expected %d", ref.addr, len(raw), chunkElems*uint64(elemSize))
			}
		} else {
			raw = make([]byte, chunkElems*uint64(elemSize))
		}

		if err := emitChunk(raw, dims, chunkDims, offset, elemSize, blockElems, fn); err != nil {
			return err
		}

		if !advance(cell, grid) {
			return nil
		}
	}
}

// emitChunk delivers the in-bounds elements of one chunk: runs along the
// fastest-varying dimension, clipped to the dataset's extent for edge
// chunks.
func emitChunk(raw []byte, dims, chunkDims, offset []uint64, elemSize, blockElems int, fn func([]byte) error) error {
	rank := len(dims)
	valid := make([]uint64, rank)
	for d := 0; d < rank; d++ {
		valid[d] = chunkDims[d]
		if offset[d]+valid[d] > dims[d] {
			if offset[d] >= dims[d] {
				return nil
			}
			valid[d] = dims[d] - offset[d]
		}
	}
	if rank == 0 {
		return fn(raw[:elemSize])
	}

	// Row-major strides within the chunk's own storage.
	strides := make([]uint64, rank)
	strides[rank-1] = 1
	for d := rank - 2; d >= 0; d-- {
		strides[d] = strides[d+1] * chunkDims[d+1]
	}

	idx := make([]uint64, rank-1)
	for {
		var pos uint64
		for d := 0; d < rank-1; d++ {
			pos += idx[d] * strides[d]
		}
		start := pos * uint64(elemSize)
		end := start + valid[rank-1]*uint64(elemSize)
		if err := emitRuns(raw[start:end], elemSize, blockElems, fn); err != nil {
			return err
		}
		if !advance(idx, valid[:rank-1]) {
			return nil
		}
	}
}

// advance increments a row-major multi-index, reporting false on wrap.
func advance(idx, bounds []uint64) bool {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < bounds[d] {
			return true
		}
		idx[d] = 0
	}
	return false
}

func chunkKey(offset []uint64) string {
	out := make([]byte, 8*len(offset))
	for i, v := range offset {
		binary.LittleEndian.PutUint64(out[i*8:], v)
	}
	return string(out)
}

// walkChunkBTree walks a version-1 B-tree of node type 1, collecting
// every chunk's address keyed by its logical offset. ndims counts the
// key's offset fields (dataset rank plus the trailing element-size
// dimension).
func walkChunkBTree(f *File, addr uint64, ndims int, out map[string]chunkRef) error {
	head, err := f.readAt(addr, 8+2*f.OffsetSize)
	if err != nil {
		return err
	}
	if string(head[0:4]) != "TREE" {
		return fmt.Errorf("no B-tree node at 0x%X", addr)
	}
	if head[4] != 1 {
		return fmt.Errorf("B-tree node at 0x%X has type %d, expected a chunk node", addr, head[4])
	}
	level := int(head[5])
	entries := int(f.ByteOrder.Uint16(head[6:8]))

	keySize := 8 + 8*ndims
	bodyLen := (entries+1)*keySize + entries*f.OffsetSize
	body, err := f.readAt(addr+uint64(8+2*f.OffsetSize), bodyLen)
	if err != nil {
		return err
	}

	pos := 0
	for i := 0; i < entries; i++ {
		key := body[pos : pos+keySize]
		pos += keySize
		child, err := f.offsetAt(body, pos)
		if err != nil {
			return err
		}
		pos += f.OffsetSize

		if level > 0 {
			if err := walkChunkBTree(f, child, ndims, out); err != nil {
				return err
			}
			continue
		}

		size := f.ByteOrder.Uint32(key[0:4])
		mask := f.ByteOrder.Uint32(key[4:8])
		offset := make([]uint64, ndims-1)
		for d := 0; d < ndims-1; d++ {
			offset[d] = f.ByteOrder.Uint64(key[8+8*d : 16+8*d])
		}
		out[chunkKey(offset)] = chunkRef{addr: child, size: size, mask: mask}
	}
	return nil
}

// readVlenString resolves one variable-length string element: a 4-byte
// length, a global-heap collection address, and a 4-byte object index.
// A zero-length element decodes as the empty string; a non-empty element
// pointing nowhere is the null pointer the string validators reject.
func (f *File) readVlenString(elem []byte) (s string, null bool, err error) {
	if len(elem) < 4+f.OffsetSize+4 {
		return "", false, fmt.Errorf("variable-length element of %d bytes is too short", len(elem))
	}
	length := f.ByteOrder.Uint32(elem[0:4])
	addr, err := f.offsetAt(elem, 4)
	if err != nil {
		return "", false, err
	}
	index := f.ByteOrder.Uint32(elem[4+f.OffsetSize : 8+f.OffsetSize])

	if length == 0 {
		return "", false, nil
	}
	if addr == 0 || f.undefinedAddr(addr) {
		return "", true, nil
	}
	data, err := f.globalHeapObject(addr, index)
	if err != nil {
		return "", false, err
	}
	if uint64(len(data)) < uint64(length) {
		return "", false, fmt.Errorf("global heap object shorter than its declared length")
	}
	return string(data[:length]), false, nil
}

// globalHeapObject fetches one object from a "GCOL" collection, caching
// whole collections since variable-length elements of one dataset
// cluster in few collections.
func (f *File) globalHeapObject(addr uint64, index uint32) ([]byte, error) {
	if f.gheap == nil {
		f.gheap = make(map[uint64][]byte)
	}
	col, ok := f.gheap[addr]
	if !ok {
		head, err := f.readAt(addr, 8+f.LengthSize)
		if err != nil {
			return nil, err
		}
		if string(head[0:4]) != "GCOL" {
			return nil, fmt.Errorf("no global heap collection at 0x%X", addr)
		}
		size, err := f.lengthAt(head, 8)
		if err != nil {
			return nil, err
		}
		col, err = f.readAt(addr, int(size))
		if err != nil {
			return nil, err
		}
		f.gheap[addr] = col
	}

	pos := 8 + f.LengthSize
	for pos+8+f.LengthSize <= len(col) {
		objIndex := f.ByteOrder.Uint16(col[pos : pos+2])
		objSize, err := f.lengthAt(col, pos+8)
		if err != nil {
			return nil, err
		}
		pos += 8 + f.LengthSize
		if objIndex == 0 {
			break
		}
		if uint32(objIndex) == index {
			if pos+int(objSize) > len(col) {
				return nil, fmt.Errorf("global heap object overruns its collection")
			}
			return col[pos : pos+int(objSize)], nil
		}
		pos += int(objSize+7) &^ 7
	}
	return nil, fmt.Errorf("global heap object %d not found in collection at 0x%X", index, addr)
}

// DecodeInt decodes one fixed-point element per the datatype's byte
// order and signedness.
func (d *Datatype) DecodeInt(raw []byte) int64 { return decodeFixedInt(raw, d) }

// DecodeFloat decodes one floating-point element.
func (d *Datatype) DecodeFloat(raw []byte) float64 { return decodeFloat(raw, d) }

// DecodeString decodes one string element: in place for fixed-length
// strings, through the global heap for variable-length ones. null is
// true for a variable-length element whose pointer was never written.
func (f *File) DecodeString(d *Datatype, raw []byte) (s string, null bool, err error) {
	switch {
	case d.IsFixedString():
		return decodeFixedString(raw, d.StringPad), false, nil
	case d.IsVariableString():
		return f.readVlenString(raw)
	default:
		return "", false, fmt.Errorf("datatype class %d is not a string type", d.Class)
	}
}

// decodeFixedInt decodes one fixed-point element per its datatype's byte
// order and signedness.
func decodeFixedInt(raw []byte, dt *Datatype) int64 {
	order := byteOrder(dt)
	switch len(raw) {
	case 1:
		if dt.Signed {
			return int64(int8(raw[0]))
		}
		return int64(raw[0])
	case 2:
		v := order.Uint16(raw)
		if dt.Signed {
			return int64(int16(v))
		}
		return int64(v)
	case 4:
		v := order.Uint32(raw)
		if dt.Signed {
			return int64(int32(v))
		}
		return int64(v)
	case 8:
		return int64(order.Uint64(raw))
	default:
		return 0
	}
}

// decodeFloat decodes one floating-point element.
func decodeFloat(raw []byte, dt *Datatype) float64 {
	order := byteOrder(dt)
	switch len(raw) {
	case 4:
		return float64(math.Float32frombits(order.Uint32(raw)))
	case 8:
		return math.Float64frombits(order.Uint64(raw))
	default:
		return 0
	}
}

func byteOrder(dt *Datatype) binary.ByteOrder {
	if dt.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
