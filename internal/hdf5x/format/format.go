// Package format parses the HDF5 on-disk object layer: object headers
// and their messages (datatype, dataspace, layout, attributes, links),
// group traversal through symbol-table B-trees and local heaps, and
// dataset payload access across compact, contiguous, and chunked
// layouts. It reads through an io.ReaderAt using the superblock
// parameters (byte order, offset/length sizes, root address) supplied by
// the opener, so it composes with any library that can locate the
// superblock.
package format

import (
	"encoding/binary"
	"fmt"
	"io"
)

// File carries the per-file parameters every structure parse needs.
type File struct {
	R          io.ReaderAt
	ByteOrder  binary.ByteOrder
	OffsetSize int
	LengthSize int

	// gheap caches whole global-heap collections by address; populated
	// lazily while resolving variable-length strings.
	gheap map[uint64][]byte
}

// readAt reads exactly n bytes from addr.
func (f *File) readAt(addr uint64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := f.R.ReadAt(buf, int64(addr)); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("read of %d bytes at 0x%X ran past end of file", n, addr)
		}
		return nil, fmt.Errorf("read failed at 0x%X: %w", addr, err)
	}
	return buf, nil
}

// uintAt decodes a size-byte unsigned value from b at off.
func (f *File) uintAt(b []byte, off, size int) (uint64, error) {
	if off < 0 || off+size > len(b) {
		return 0, fmt.Errorf("value of %d bytes at offset %d overruns a %d-byte buffer", size, off, len(b))
	}
	switch size {
	case 1:
		return uint64(b[off]), nil
	case 2:
		return uint64(f.ByteOrder.Uint16(b[off : off+2])), nil
	case 4:
		return uint64(f.ByteOrder.Uint32(b[off : off+4])), nil
	case 8:
		return f.ByteOrder.Uint64(b[off : off+8]), nil
	default:
		return 0, fmt.Errorf("unsupported field size %d", size)
	}
}

// offsetAt decodes a file address (OffsetSize bytes).
func (f *File) offsetAt(b []byte, off int) (uint64, error) {
	return f.uintAt(b, off, f.OffsetSize)
}

// lengthAt decodes a length (LengthSize bytes).
func (f *File) lengthAt(b []byte, off int) (uint64, error) {
	return f.uintAt(b, off, f.LengthSize)
}

// undefinedAddr reports whether addr is the all-ones "undefined address"
// sentinel for the file's offset size.
func (f *File) undefinedAddr(addr uint64) bool {
	if f.OffsetSize >= 8 {
		return addr == ^uint64(0)
	}
	return addr == (uint64(1)<<(8*f.OffsetSize))-1
}
