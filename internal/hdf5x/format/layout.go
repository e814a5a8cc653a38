package format

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Data layout classes.
const (
	LayoutCompact    = 0
	LayoutContiguous = 1
	LayoutChunked    = 2
)

// Layout is a parsed data layout message (version 3).
type Layout struct {
	Class int

	// Compact.
	CompactData []byte

	// Contiguous.
	DataAddress uint64
	DataSize    uint64

	// Chunked: the B-tree root plus the chunk shape. ChunkDims carries
	// one entry per dataset dimension plus a trailing element-size entry,
	// exactly as stored in the message.
	BTreeAddress uint64
	ChunkDims    []uint64
}

// ParseLayout parses a data layout message body. Only version 3 is
// handled; version 4 introduces the newer chunk indexes and is rejected
// with a clear error rather than misread.
func ParseLayout(f *File, data []byte) (*Layout, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("data layout message too short: %d bytes", len(data))
	}
	version := data[0]
	if version != 3 {
		return nil, fmt.Errorf("unsupported data layout message version %d (only version 3 is handled)", version)
	}
	layout := &Layout{Class: int(data[1])}
	pos := 2

	switch layout.Class {
	case LayoutCompact:
		if pos+2 > len(data) {
			return nil, fmt.Errorf("compact layout message truncated")
		}
		size := int(f.ByteOrder.Uint16(data[pos : pos+2]))
		pos += 2
		if pos+size > len(data) {
			return nil, fmt.Errorf("compact data of %d bytes overruns the layout message", size)
		}
		layout.CompactData = append([]byte(nil), data[pos:pos+size]...)

	case LayoutContiguous:
		addr, err := f.offsetAt(data, pos)
		if err != nil {
			return nil, err
		}
		pos += f.OffsetSize
		size, err := f.lengthAt(data, pos)
		if err != nil {
			return nil, err
		}
		layout.DataAddress, layout.DataSize = addr, size

	case LayoutChunked:
		if pos >= len(data) {
			return nil, fmt.Errorf("chunked layout message truncated")
		}
		ndims := int(data[pos])
		pos++
		addr, err := f.offsetAt(data, pos)
		if err != nil {
			return nil, err
		}
		pos += f.OffsetSize
		layout.BTreeAddress = addr
		layout.ChunkDims = make([]uint64, ndims)
		for d := 0; d < ndims; d++ {
			if pos+4 > len(data) {
				return nil, fmt.Errorf("chunk dimensions overrun the layout message")
			}
			layout.ChunkDims[d] = uint64(f.ByteOrder.Uint32(data[pos : pos+4]))
			pos += 4
		}

	default:
		return nil, fmt.Errorf("unsupported data layout class %d", layout.Class)
	}
	return layout, nil
}

// Filter IDs from the filter pipeline message.
const (
	FilterDeflate    = 1
	FilterShuffle    = 2
	FilterFletcher32 = 3
)

// Filter is one entry of the filter pipeline.
type Filter struct {
	ID     int
	Values []uint32
}

// ParseFilters parses a filter pipeline message body (versions 1 and 2).
func ParseFilters(f *File, data []byte) ([]Filter, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("filter pipeline message too short: %d bytes", len(data))
	}
	version := data[0]
	nfilters := int(data[1])
	var pos int
	switch version {
	case 1:
		pos = 8
	case 2:
		pos = 2
	default:
		return nil, fmt.Errorf("unsupported filter pipeline message version %d", version)
	}

	filters := make([]Filter, 0, nfilters)
	for i := 0; i < nfilters; i++ {
		if pos+8 > len(data) {
			return nil, fmt.Errorf("filter %d overruns the pipeline message", i)
		}
		id := int(f.ByteOrder.Uint16(data[pos : pos+2]))
		pos += 2
		nameLen := 0
		if version == 1 || id >= 256 {
			nameLen = int(f.ByteOrder.Uint16(data[pos : pos+2]))
			pos += 2
		}
		pos += 2 // flags
		nvalues := int(f.ByteOrder.Uint16(data[pos : pos+2]))
		pos += 2
		if version == 1 {
			nameLen = (nameLen + 7) &^ 7
		}
		pos += nameLen
		values := make([]uint32, nvalues)
		for v := 0; v < nvalues; v++ {
			if pos+4 > len(data) {
				return nil, fmt.Errorf("filter %d client values overrun the pipeline message", i)
			}
			values[v] = f.ByteOrder.Uint32(data[pos : pos+4])
			pos += 4
		}
		if version == 1 && nvalues%2 == 1 {
			pos += 4
		}
		filters = append(filters, Filter{ID: id, Values: values})
	}
	return filters, nil
}

// applyFilters reverses the filter pipeline on one chunk's stored bytes.
// mask has bit i set when filter i was skipped at write time. Filters are
// reversed in the opposite of their declared order.
func applyFilters(raw []byte, filters []Filter, mask uint32, elemSize int) ([]byte, error) {
	for i := len(filters) - 1; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			continue
		}
		switch filters[i].ID {
		case FilterDeflate:
			zr, err := zlib.NewReader(bytes.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("chunk inflate failed: %w", err)
			}
			out, err := io.ReadAll(zr)
			zr.Close()
			if err != nil {
				return nil, fmt.Errorf("chunk inflate failed: %w", err)
			}
			raw = out
		case FilterShuffle:
			size := elemSize
			if len(filters[i].Values) > 0 {
				size = int(filters[i].Values[0])
			}
			raw = unshuffle(raw, size)
		case FilterFletcher32:
			if len(raw) < 4 {
				return nil, fmt.Errorf("fletcher32 chunk shorter than its checksum")
			}
			raw = raw[:len(raw)-4]
		default:
			return nil, fmt.Errorf("unsupported filter id %d in chunk pipeline", filters[i].ID)
		}
	}
	return raw, nil
}

// unshuffle undoes the byte-shuffle filter: stored data groups byte 0 of
// every element, then byte 1, and so on.
func unshuffle(raw []byte, elemSize int) []byte {
	if elemSize <= 1 || len(raw)%elemSize != 0 {
		return raw
	}
	n := len(raw) / elemSize
	out := make([]byte, len(raw))
	for b := 0; b < elemSize; b++ {
		for i := 0; i < n; i++ {
			out[i*elemSize+b] = raw[b*n+i]
		}
	}
	return out
}
