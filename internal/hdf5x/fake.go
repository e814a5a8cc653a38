package hdf5x

import (
	"fmt"
	"strings"
)

// FakeGroup is an in-memory Group/File builder used by validator tests in
// place of a real HDF5 file. Construct one with NewFakeGroup, populate it
// with Set* helpers, and pass it wherever a hdf5x.Group or hdf5x.File is
// expected.
type FakeGroup struct {
	attrs    map[string]*fakeAttr
	datasets map[string]*FakeDataset
	groups   map[string]*FakeGroup
	order    []string
}

// NewFakeGroup returns an empty group.
func NewFakeGroup() *FakeGroup {
	return &FakeGroup{
		attrs:    make(map[string]*fakeAttr),
		datasets: make(map[string]*FakeDataset),
		groups:   make(map[string]*FakeGroup),
	}
}

func (g *FakeGroup) track(name string) {
	for _, n := range g.order {
		if n == name {
			return
		}
	}
	g.order = append(g.order, name)
}

// SetStringAttr sets a scalar string attribute.
func (g *FakeGroup) SetStringAttr(name, value string) *FakeGroup {
	g.attrs[name] = &fakeAttr{class: ClassString, str: value}
	return g
}

// SetIntAttr sets a scalar integer attribute.
func (g *FakeGroup) SetIntAttr(name string, value int64) *FakeGroup {
	g.attrs[name] = &fakeAttr{class: ClassInteger, i: value}
	return g
}

// SetFloatAttr sets a scalar float attribute.
func (g *FakeGroup) SetFloatAttr(name string, value float64) *FakeGroup {
	g.attrs[name] = &fakeAttr{class: ClassFloat, f: value}
	return g
}

// Dataset adds (or returns the existing) child dataset.
func (g *FakeGroup) Dataset(name string) *FakeDataset {
	d, ok := g.datasets[name]
	if !ok {
		d = &FakeDataset{attrs: make(map[string]*fakeAttr), signedBits: 64, unsignedBits: 64, floatBits: 64}
		g.datasets[name] = d
		g.track(name)
	}
	return d
}

// Group adds (or returns the existing) child group.
func (g *FakeGroup) Group(childName string) *FakeGroup {
	sub, ok := g.groups[childName]
	if !ok {
		sub = NewFakeGroup()
		g.groups[childName] = sub
		g.track(childName)
	}
	return sub
}

func (g *FakeGroup) Attr(name string) (Attr, bool) {
	a, ok := g.attrs[name]
	return a, ok
}

func (g *FakeGroup) DatasetLookup(name string) (Dataset, bool) {
	d, ok := g.datasets[name]
	return d, ok
}

// GroupLookup returns the named child group through the interface type,
// satisfying the lookup half of hdf5x.Group (the builder method Group(name)
// above returns a concrete *FakeGroup for chaining, so the two can't share
// a name).
func (g *FakeGroup) GroupLookup(name string) (Group, bool) {
	sub, ok := g.groups[name]
	if !ok {
		return nil, false
	}
	return fakeGroupAdapter{sub}, true
}

func (g *FakeGroup) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

type fakeAttr struct {
	class Class
	str   string
	i     int64
	f     float64
}

func (a *fakeAttr) AsString() (string, bool) {
	if a.class != ClassString {
		return "", false
	}
	return a.str, true
}

func (a *fakeAttr) AsInt() (int64, bool) {
	if a.class != ClassInteger {
		return 0, false
	}
	return a.i, true
}

func (a *fakeAttr) AsFloat() (float64, bool) {
	if a.class != ClassFloat {
		return 0, false
	}
	return a.f, true
}

func (a *fakeAttr) Class() Class { return a.class }

// FakeDataset is an in-memory Dataset.
type FakeDataset struct {
	attrs        map[string]*fakeAttr
	class        Class
	dims         []int64
	ints         []int64
	floats       []float64
	strings      []NullableString
	signedBits   int
	unsignedBits int
	floatBits    int
}

func (d *FakeDataset) SetIntAttr(name string, v int64) *FakeDataset {
	d.attrs[name] = &fakeAttr{class: ClassInteger, i: v}
	return d
}

func (d *FakeDataset) SetStringAttr(name, v string) *FakeDataset {
	d.attrs[name] = &fakeAttr{class: ClassString, str: v}
	return d
}

func (d *FakeDataset) SetFloatAttr(name string, v float64) *FakeDataset {
	d.attrs[name] = &fakeAttr{class: ClassFloat, f: v}
	return d
}

// Ints sets 1-D integer content, with dims defaulting to [len(values)].
func (d *FakeDataset) Ints(values []int64) *FakeDataset {
	d.class = ClassInteger
	d.ints = values
	if d.dims == nil {
		d.dims = []int64{int64(len(values))}
	}
	return d
}

// Floats sets 1-D float content.
func (d *FakeDataset) Floats(values []float64) *FakeDataset {
	d.class = ClassFloat
	d.floats = values
	if d.dims == nil {
		d.dims = []int64{int64(len(values))}
	}
	return d
}

// Strings sets 1-D string content.
func (d *FakeDataset) Strings(values []string) *FakeDataset {
	d.class = ClassString
	d.strings = make([]NullableString, len(values))
	for i, v := range values {
		d.strings[i] = NullableString{Value: v}
	}
	if d.dims == nil {
		d.dims = []int64{int64(len(values))}
	}
	return d
}

// StringsWithNulls sets 1-D string content including explicit null
// variable-length pointers.
func (d *FakeDataset) StringsWithNulls(values []NullableString) *FakeDataset {
	d.class = ClassString
	d.strings = values
	if d.dims == nil {
		d.dims = []int64{int64(len(values))}
	}
	return d
}

// WithDims overrides the reported dimension vector, e.g. for N-D dense
// arrays where the flat backing slice doesn't imply shape.
func (d *FakeDataset) WithDims(dims ...int64) *FakeDataset {
	d.dims = dims
	return d
}

// WithBitWidth declares the narrowest signed/unsigned/float bit width the
// fake dataset's declared datatype fits in - mirrors the HDF5 reader
// contract's "check integer/float bit width" probe.
func (d *FakeDataset) WithBitWidth(signed, unsigned, float int) *FakeDataset {
	d.signedBits, d.unsignedBits, d.floatBits = signed, unsigned, float
	return d
}

func (d *FakeDataset) Attr(name string) (Attr, bool) {
	a, ok := d.attrs[name]
	return a, ok
}

func (d *FakeDataset) Class() Class     { return d.class }
func (d *FakeDataset) Dims() []int64    { return d.dims }
func (d *FakeDataset) Len() int64 {
	n := int64(1)
	for _, dd := range d.dims {
		n *= dd
	}
	return n
}

func (d *FakeDataset) FitsSignedInt(bits int) bool   { return d.signedBits <= bits }
func (d *FakeDataset) FitsUnsignedInt(bits int) bool { return d.unsignedBits <= bits }
func (d *FakeDataset) FitsFloat(bits int) bool       { return d.floatBits <= bits }

func (d *FakeDataset) IterateInt(blockSize int, fn func([]int64) error) error {
	if d.class != ClassInteger {
		return fmt.Errorf("dataset is not integer-typed")
	}
	return iterateBlocks(len(d.ints), blockSize, func(lo, hi int) error { return fn(d.ints[lo:hi]) })
}

func (d *FakeDataset) IterateFloat(blockSize int, fn func([]float64) error) error {
	if d.class != ClassFloat {
		return fmt.Errorf("dataset is not float-typed")
	}
	return iterateBlocks(len(d.floats), blockSize, func(lo, hi int) error { return fn(d.floats[lo:hi]) })
}

func (d *FakeDataset) IterateString(blockSize int, fn func([]NullableString) error) error {
	if d.class != ClassString {
		return fmt.Errorf("dataset is not string-typed")
	}
	return iterateBlocks(len(d.strings), blockSize, func(lo, hi int) error { return fn(d.strings[lo:hi]) })
}

func iterateBlocks(n, blockSize int, fn func(lo, hi int) error) error {
	if blockSize <= 0 {
		blockSize = n
		if blockSize == 0 {
			blockSize = 1
		}
	}
	for lo := 0; lo < n; lo += blockSize {
		hi := lo + blockSize
		if hi > n {
			hi = n
		}
		if err := fn(lo, hi); err != nil {
			return err
		}
	}
	return nil
}

// FakeFile wraps a FakeGroup as a root-level File.
type FakeFile struct {
	root *FakeGroup
}

// NewFakeFile builds a fake file whose root group is root.
func NewFakeFile(root *FakeGroup) *FakeFile { return &FakeFile{root: root} }

func (f *FakeFile) Close() error { return nil }
func (f *FakeFile) Root() Group  { return fakeGroupAdapter{f.root} }

func (f *FakeFile) OpenGroup(path string) (Group, error) {
	cur := f.root
	if path == "" {
		return fakeGroupAdapter{cur}, nil
	}
	for _, part := range strings.Split(path, "/") {
		sub, ok := cur.groups[part]
		if !ok {
			return nil, fmt.Errorf("no such group %q", path)
		}
		cur = sub
	}
	return fakeGroupAdapter{cur}, nil
}

// fakeGroupAdapter presents *FakeGroup through the exact hdf5x.Group
// method set (Dataset/Group returning the interface types).
type fakeGroupAdapter struct{ g *FakeGroup }

func (a fakeGroupAdapter) Attr(name string) (Attr, bool) { return a.g.Attr(name) }
func (a fakeGroupAdapter) Dataset(name string) (Dataset, bool) {
	return a.g.DatasetLookup(name)
}
func (a fakeGroupAdapter) Group(name string) (Group, bool) { return a.g.GroupLookup(name) }
func (a fakeGroupAdapter) Names() []string                 { return a.g.Names() }
