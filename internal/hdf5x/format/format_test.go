package format

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// --- small fixture builder (keeps tests readable) ---

// image is a scratch file image written at fixed addresses.
type image struct {
	buf []byte
}

func newImage(size int) *image { return &image{buf: make([]byte, size)} }

func (m *image) u8(addr uint64, v uint8)    { m.buf[addr] = v }
func (m *image) u16(addr uint64, v uint16)  { binary.LittleEndian.PutUint16(m.buf[addr:], v) }
func (m *image) u32(addr uint64, v uint32)  { binary.LittleEndian.PutUint32(m.buf[addr:], v) }
func (m *image) u64(addr uint64, v uint64)  { binary.LittleEndian.PutUint64(m.buf[addr:], v) }
func (m *image) put(addr uint64, b []byte)  { copy(m.buf[addr:], b) }
func (m *image) str(addr uint64, s string)  { copy(m.buf[addr:], s) }

func (m *image) file() *File {
	return &File{
		R:          bytes.NewReader(m.buf),
		ByteOrder:  binary.LittleEndian,
		OffsetSize: 8,
		LengthSize: 8,
	}
}

// dtFixed renders a fixed-point datatype message body.
func dtFixed(size int, signed bool) []byte {
	b := make([]byte, 8)
	b[0] = 0x10 // version 1, class 0
	if signed {
		b[1] = 0x08
	}
	binary.LittleEndian.PutUint32(b[4:], uint32(size))
	return b
}

// dtFixedString renders a fixed-length string datatype message body.
func dtFixedString(size int) []byte {
	b := make([]byte, 8)
	b[0] = 0x13 // version 1, class 3
	binary.LittleEndian.PutUint32(b[4:], uint32(size))
	return b
}

// dtVlenString renders a variable-length string datatype message body.
func dtVlenString() []byte {
	b := make([]byte, 8)
	b[0] = 0x19 // version 1, class 9
	b[1] = 0x01 // variable-length string
	binary.LittleEndian.PutUint32(b[4:], 16)
	return b
}

// ds1D renders a version-1 dataspace message body for a 1-D extent.
func ds1D(n uint64) []byte {
	b := make([]byte, 16)
	b[0] = 1
	b[1] = 1
	binary.LittleEndian.PutUint64(b[8:], n)
	return b
}

// dsScalar renders a version-1 scalar dataspace message body.
func dsScalar() []byte {
	b := make([]byte, 8)
	b[0] = 1
	return b
}

// v1Message renders one version-1 object header message (8-byte header,
// body padded to an 8-byte multiple).
func v1Message(msgType uint16, body []byte) []byte {
	padded := (len(body) + 7) &^ 7
	out := make([]byte, 8+padded)
	binary.LittleEndian.PutUint16(out[0:], msgType)
	binary.LittleEndian.PutUint16(out[2:], uint16(padded))
	copy(out[8:], body)
	return out
}

// v1Header writes a version-1 object header with the given messages at
// addr.
func (m *image) v1Header(addr uint64, messages ...[]byte) {
	var block []byte
	for _, msg := range messages {
		block = append(block, msg...)
	}
	m.u8(addr, 1)
	m.u16(addr+2, uint16(len(messages)))
	m.u32(addr+8, uint32(len(block)))
	m.put(addr+16, block)
}

func TestParseDatatypeFixed(t *testing.T) {
	f := newImage(16).file()
	dt, err := ParseDatatype(f, dtFixed(4, true))
	require.NoError(t, err)
	require.Equal(t, ClassFixed, dt.Class)
	require.Equal(t, 4, dt.Size)
	require.True(t, dt.Signed)
	require.False(t, dt.BigEndian)

	dt, err = ParseDatatype(f, dtFixed(8, false))
	require.NoError(t, err)
	require.False(t, dt.Signed)
	require.Equal(t, 8, dt.Size)
}

func TestParseDatatypeVlenString(t *testing.T) {
	f := newImage(16).file()
	dt, err := ParseDatatype(f, dtVlenString())
	require.NoError(t, err)
	require.True(t, dt.IsVariableString())
	require.False(t, dt.IsFixedString())
	require.Equal(t, 16, dt.Size)
}

func TestParseDataspace(t *testing.T) {
	f := newImage(16).file()
	dims, err := ParseDataspace(f, ds1D(42))
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, dims)

	dims, err = ParseDataspace(f, dsScalar())
	require.NoError(t, err)
	require.Empty(t, dims)
}

// attrV3String renders a version-3 attribute message holding a scalar
// fixed-length string.
func attrV3String(name, value string) []byte {
	dt := dtFixedString(len(value) + 1)
	ds := dsScalar()
	body := []byte{3, 0}
	nameBytes := append([]byte(name), 0)
	body = append(body, u16le(uint16(len(nameBytes)))...)
	body = append(body, u16le(uint16(len(dt)))...)
	body = append(body, u16le(uint16(len(ds)))...)
	body = append(body, 0) // name encoding
	body = append(body, nameBytes...)
	body = append(body, dt...)
	body = append(body, ds...)
	body = append(body, append([]byte(value), 0)...)
	return body
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func TestParseAttributeV3String(t *testing.T) {
	f := newImage(16).file()
	attr, err := ParseAttribute(f, attrV3String("version", "1.0"))
	require.NoError(t, err)
	require.Equal(t, "version", attr.Name)
	s, ok := attr.StringValue(f)
	require.True(t, ok)
	require.Equal(t, "1.0", s)
}

func TestParseAttributeV1Padded(t *testing.T) {
	// Version 1 pads name/datatype/dataspace regions to 8-byte multiples
	// while the declared sizes stay unpadded.
	f := newImage(16).file()
	name := []byte("ord\x00")
	dt := dtFixed(4, true)
	ds := dsScalar()

	body := []byte{1, 0}
	body = append(body, u16le(uint16(len(name)))...)
	body = append(body, u16le(uint16(len(dt)))...)
	body = append(body, u16le(uint16(len(ds)))...)
	body = append(body, name...)
	body = append(body, 0, 0, 0, 0) // pad name region to 8
	body = append(body, dt...)
	body = append(body, ds...)
	value := make([]byte, 4)
	binary.LittleEndian.PutUint32(value, 7)
	body = append(body, value...)

	attr, err := ParseAttribute(f, body)
	require.NoError(t, err)
	require.Equal(t, "ord", attr.Name)
	v, ok := attr.IntValue(f)
	require.True(t, ok)
	require.Equal(t, int64(7), v)
}

func TestReadObjectContiguousDataset(t *testing.T) {
	m := newImage(4096)
	const dataAddr = 1024

	layout := make([]byte, 2+8+8)
	layout[0] = 3
	layout[1] = LayoutContiguous
	binary.LittleEndian.PutUint64(layout[2:], dataAddr)
	binary.LittleEndian.PutUint64(layout[10:], 12)

	m.v1Header(0,
		v1Message(MsgDatatype, dtFixed(4, true)),
		v1Message(MsgDataspace, ds1D(3)),
		v1Message(MsgDataLayout, layout),
		v1Message(MsgAttribute, attrV3String("type", "integer")),
	)
	for i, v := range []uint32{10, 20, 30} {
		m.u32(dataAddr+uint64(i)*4, v)
	}

	f := m.file()
	obj, err := ReadObject(f, 0)
	require.NoError(t, err)
	require.True(t, obj.IsDataset())
	require.Equal(t, []uint64{3}, obj.Dims)

	attr, ok := obj.Attr("type")
	require.True(t, ok)
	s, ok := attr.StringValue(f)
	require.True(t, ok)
	require.Equal(t, "integer", s)

	var got []int64
	require.NoError(t, IterateRaw(f, obj, 2, func(raw []byte) error {
		for pos := 0; pos < len(raw); pos += 4 {
			got = append(got, obj.Datatype.DecodeInt(raw[pos:pos+4]))
		}
		return nil
	}))
	require.Equal(t, []int64{10, 20, 30}, got)
}

func TestIterateChunkedWithDeflate(t *testing.T) {
	m := newImage(8192)
	const btreeAddr = 1024
	const chunkBase = 2048

	// 1-D dataset of 5 int32s, chunked 2 elements at a time, deflated.
	chunks := [][]uint32{{10, 20}, {30, 40}, {50, 0}}
	var chunkAddrs []uint64
	var chunkSizes []uint32
	for i, vals := range chunks {
		raw := make([]byte, 8)
		binary.LittleEndian.PutUint32(raw[0:], vals[0])
		binary.LittleEndian.PutUint32(raw[4:], vals[1])
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		_, err := zw.Write(raw)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		addr := uint64(chunkBase + i*256)
		m.put(addr, z.Bytes())
		chunkAddrs = append(chunkAddrs, addr)
		chunkSizes = append(chunkSizes, uint32(z.Len()))
	}

	// B-tree leaf: "TREE", type 1, level 0, three entries.
	m.str(btreeAddr, "TREE")
	m.u8(btreeAddr+4, 1)
	m.u16(btreeAddr+6, 3)
	m.u64(btreeAddr+8, ^uint64(0))
	m.u64(btreeAddr+16, ^uint64(0))
	pos := uint64(btreeAddr + 24)
	writeKey := func(size uint32, offset uint64) {
		m.u32(pos, size)
		m.u32(pos+4, 0)
		m.u64(pos+8, offset)
		m.u64(pos+16, 0)
		pos += 24
	}
	for i := 0; i < 3; i++ {
		writeKey(chunkSizes[i], uint64(i*2))
		m.u64(pos, chunkAddrs[i])
		pos += 8
	}
	writeKey(0, 6)

	layout := []byte{3, LayoutChunked, 2}
	layout = append(layout, make([]byte, 8)...)
	binary.LittleEndian.PutUint64(layout[3:], btreeAddr)
	chunkDims := make([]byte, 8)
	binary.LittleEndian.PutUint32(chunkDims[0:], 2)
	binary.LittleEndian.PutUint32(chunkDims[4:], 4)
	layout = append(layout, chunkDims...)

	filters := []byte{1, 1, 0, 0, 0, 0, 0, 0}
	filters = append(filters,
		1, 0, // deflate
		0, 0, // no name
		0, 0, // flags
		1, 0, // one client value
		6, 0, 0, 0, // level
		0, 0, 0, 0, // odd value count padding
	)

	m.v1Header(0,
		v1Message(MsgDatatype, dtFixed(4, true)),
		v1Message(MsgDataspace, ds1D(5)),
		v1Message(MsgDataLayout, layout),
		v1Message(MsgFilters, filters),
	)

	f := m.file()
	obj, err := ReadObject(f, 0)
	require.NoError(t, err)

	var got []int64
	require.NoError(t, IterateRaw(f, obj, 2, func(raw []byte) error {
		for p := 0; p < len(raw); p += 4 {
			got = append(got, obj.Datatype.DecodeInt(raw[p:p+4]))
		}
		return nil
	}))
	// The final chunk is clipped to the dataset extent.
	require.Equal(t, []int64{10, 20, 30, 40, 50}, got)
}

func TestSymbolTableChildren(t *testing.T) {
	m := newImage(8192)
	const (
		rootAddr  = 0
		btreeAddr = 512
		heapAddr  = 1024
		heapData  = 1280
		snodAddr  = 1536
		childAddr = 2048
	)

	// Root group: a v1 header holding a symbol table message.
	symtab := make([]byte, 16)
	binary.LittleEndian.PutUint64(symtab[0:], btreeAddr)
	binary.LittleEndian.PutUint64(symtab[8:], heapAddr)
	m.v1Header(rootAddr, v1Message(MsgSymbolTable, symtab))

	// Local heap with "child" at offset 8.
	m.str(heapAddr, "HEAP")
	m.u64(heapAddr+8, 64)
	m.u64(heapAddr+24, heapData)
	m.str(heapData+8, "child")

	// B-tree leaf with one SNOD child.
	m.str(btreeAddr, "TREE")
	m.u8(btreeAddr+4, 0)
	m.u16(btreeAddr+6, 1)
	m.u64(btreeAddr+8, ^uint64(0))
	m.u64(btreeAddr+16, ^uint64(0))
	m.u64(btreeAddr+24, 0)        // key 0
	m.u64(btreeAddr+32, snodAddr) // child 0
	m.u64(btreeAddr+40, 0)        // key 1

	// SNOD with one entry pointing at the child header.
	m.str(snodAddr, "SNOD")
	m.u8(snodAddr+4, 1)
	m.u16(snodAddr+6, 1)
	m.u64(snodAddr+8, 8) // link name offset
	m.u64(snodAddr+16, childAddr)

	// The child itself: an empty v1 header.
	m.v1Header(childAddr)

	f := m.file()
	root, err := ReadObject(f, rootAddr)
	require.NoError(t, err)
	require.True(t, root.HasSymbols)

	children, err := Children(f, root)
	require.NoError(t, err)
	require.Equal(t, map[string]uint64{"child": childAddr}, children)

	child, err := ReadObject(f, childAddr)
	require.NoError(t, err)
	require.False(t, child.IsDataset())
}

func TestVlenStringDataset(t *testing.T) {
	m := newImage(8192)
	const (
		dataAddr = 1024
		gcolAddr = 2048
	)

	// Two elements: "abc" in the global heap, then a null pointer.
	m.u32(dataAddr, 3)
	m.u64(dataAddr+4, gcolAddr)
	m.u32(dataAddr+12, 1)
	m.u32(dataAddr+16, 5)
	m.u64(dataAddr+20, 0)
	m.u32(dataAddr+28, 0)

	m.str(gcolAddr, "GCOL")
	m.u8(gcolAddr+4, 1)
	m.u64(gcolAddr+8, 64)
	m.u16(gcolAddr+16, 1) // object index
	m.u64(gcolAddr+24, 3) // object size
	m.str(gcolAddr+32, "abc")

	layout := make([]byte, 2+8+8)
	layout[0] = 3
	layout[1] = LayoutContiguous
	binary.LittleEndian.PutUint64(layout[2:], dataAddr)
	binary.LittleEndian.PutUint64(layout[10:], 32)

	m.v1Header(0,
		v1Message(MsgDatatype, dtVlenString()),
		v1Message(MsgDataspace, ds1D(2)),
		v1Message(MsgDataLayout, layout),
	)

	f := m.file()
	obj, err := ReadObject(f, 0)
	require.NoError(t, err)

	type result struct {
		s    string
		null bool
	}
	var got []result
	require.NoError(t, IterateRaw(f, obj, 10, func(raw []byte) error {
		for p := 0; p+16 <= len(raw); p += 16 {
			s, null, err := f.DecodeString(obj.Datatype, raw[p:p+16])
			if err != nil {
				return err
			}
			got = append(got, result{s, null})
		}
		return nil
	}))
	require.Equal(t, []result{{"abc", false}, {"", true}}, got)
}

func TestLayoutVersion4Rejected(t *testing.T) {
	f := newImage(16).file()
	_, err := ParseLayout(f, []byte{4, 2, 0, 0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "version 4")
}
