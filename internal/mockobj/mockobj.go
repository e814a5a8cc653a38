// Package mockobj builds valid on-disk mock objects for the validator
// test suites: OBJECT metadata files plus in-memory HDF5 payloads
// registered through hdf5x.InstallMemoryFile. Each builder produces the
// smallest directory that passes its type's validator, so tests start
// from a known-good object and break one invariant at a time.
package mockobj

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	jsoniter "github.com/json-iterator/go"

	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/internal/registry"
	"github.com/takane-go/takane/pkg/types"
)

// TestOptions returns Options wired to the default registry with a small
// scan buffer, so block-boundary handling gets exercised even by tiny
// mock datasets.
func TestOptions() types.Options {
	return types.Options{
		Registry:       registry.Default(),
		HDF5BufferSize: 7,
		ParallelReads:  true,
	}
}

// WriteOBJECT creates dir (if needed) and writes its OBJECT file with the
// given type plus optional typed metadata nested under the type name.
func WriteOBJECT(t *testing.T, dir, typeName string, typed map[string]interface{}) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	doc := map[string]interface{}{"type": typeName}
	if typed != nil {
		doc[typeName] = typed
	}
	raw, err := jsoniter.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal OBJECT for %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "OBJECT"), raw, 0o644); err != nil {
		t.Fatalf("write OBJECT for %s: %v", dir, err)
	}
}

// InstallH5 registers an in-memory payload for dir/filename and removes
// it again when the test finishes. A stub file is also written at the
// path so directory-entry counts see the payload; Open consults the
// memory table before touching the file system, so the stub's contents
// never matter.
func InstallH5(t *testing.T, dir, filename string, root *hdf5x.FakeGroup) {
	t.Helper()
	path := filepath.Join(dir, filename)
	WriteFile(t, path, []byte{})
	cleanup := hdf5x.InstallMemoryFile(path, root)
	t.Cleanup(cleanup)
}

// GzipFile writes content gzip-compressed to path.
func GzipFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(content); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

// WriteFile writes raw bytes, creating parent directories.
func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteNamesJSON writes dir/names.json.
func WriteNamesJSON(t *testing.T, dir string, names []string) {
	t.Helper()
	raw, err := jsoniter.Marshal(names)
	if err != nil {
		t.Fatalf("marshal names.json: %v", err)
	}
	WriteFile(t, filepath.Join(dir, "names.json"), raw)
}

func seq(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out
}

// IntVector builds an atomic_vector of n int32 values 0..n-1, optionally
// with a same-length names dataset.
func IntVector(t *testing.T, dir string, n int, withNames bool) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "atomic_vector", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("atomic_vector")
	g.SetStringAttr("version", "1.0").SetStringAttr("type", "integer")
	g.Dataset("values").Ints(seq(n)).WithBitWidth(32, 32, 64)
	if withNames {
		names := make([]string, n)
		for i := range names {
			names[i] = "elem_" + string(rune('a'+i%26))
		}
		g.Dataset("names").Strings(names)
	}
	InstallH5(t, dir, "contents.h5", root)
	return g
}

// StringVector builds an atomic_vector of string values with an optional
// format attribute and missing-value placeholder.
func StringVector(t *testing.T, dir string, values []string, format, placeholder string) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "atomic_vector", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("atomic_vector")
	g.SetStringAttr("version", "1.0").SetStringAttr("type", "string")
	ds := g.Dataset("values").Strings(values)
	if format != "" {
		g.SetStringAttr("format", format)
	}
	if placeholder != "" {
		ds.SetStringAttr("missing-value-placeholder", placeholder)
	}
	InstallH5(t, dir, "contents.h5", root)
	return g
}

// StringFactor builds a string_factor with the given levels and codes.
func StringFactor(t *testing.T, dir string, levels []string, codes []int64) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "string_factor", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("string_factor")
	g.SetStringAttr("version", "1.0")
	g.Dataset("levels").Strings(levels)
	g.Dataset("codes").Ints(codes).WithBitWidth(32, 32, 64)
	InstallH5(t, dir, "contents.h5", root)
	return g
}

// DenseArray builds a dense_array of the given element type and reported
// dimensions, filled with zeros (or empty strings).
func DenseArray(t *testing.T, dir, elemType string, reported []int64) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "dense_array", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("dense_array")
	g.SetStringAttr("version", "1.0").SetStringAttr("type", elemType)

	total := int64(1)
	for _, d := range reported {
		total *= d
	}
	storage := make([]int64, len(reported))
	for i, d := range reported {
		storage[len(reported)-1-i] = d
	}
	ds := g.Dataset("data")
	switch elemType {
	case "number":
		ds.Floats(make([]float64, total))
	case "string":
		ds.Strings(make([]string, total))
	default:
		ds.Ints(make([]int64, total)).WithBitWidth(32, 32, 64)
	}
	ds.WithDims(storage...)
	InstallH5(t, dir, "array.h5", root)
	return g
}

// SparseMatrixCSC builds an nrow x ncol compressed_sparse_matrix in CSC
// layout with the given per-column row indices.
func SparseMatrixCSC(t *testing.T, dir string, nrow, ncol int64, colIndices [][]int64) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "compressed_sparse_matrix", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("compressed_sparse_matrix")
	g.SetStringAttr("version", "1.0").SetStringAttr("type", "integer").SetStringAttr("layout", "CSC")
	g.Dataset("shape").Ints([]int64{nrow, ncol})

	var indices []int64
	indptr := []int64{0}
	for _, col := range colIndices {
		indices = append(indices, col...)
		indptr = append(indptr, int64(len(indices)))
	}
	data := make([]int64, len(indices))
	for i := range data {
		data[i] = int64(i + 1)
	}
	g.Dataset("data").Ints(data).WithBitWidth(32, 32, 64)
	g.Dataset("indices").Ints(indices)
	g.Dataset("indptr").Ints(indptr)
	InstallH5(t, dir, "matrix.h5", root)
	return g
}

// SequenceInformation builds a sequence_information object. A negative
// length marks that sequence's length as missing via a placeholder; a
// negative circular entry likewise.
func SequenceInformation(t *testing.T, dir string, names []string, lengths, circular []int64) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "sequence_information", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("sequence_information")
	g.SetStringAttr("version", "1.0")
	g.Dataset("name").Strings(names)

	const missing = int64(0)
	lengthVals := make([]int64, len(lengths))
	hasMissingLength := false
	for i, l := range lengths {
		if l < 0 {
			lengthVals[i] = missing
			hasMissingLength = true
		} else {
			lengthVals[i] = l
		}
	}
	lds := g.Dataset("length").Ints(lengthVals).WithBitWidth(64, 32, 64)
	if hasMissingLength {
		lds.SetIntAttr("missing-value-placeholder", missing)
	}

	circVals := make([]int64, len(circular))
	hasMissingCirc := false
	for i, c := range circular {
		if c < 0 {
			circVals[i] = -1
			hasMissingCirc = true
		} else {
			circVals[i] = c
		}
	}
	cds := g.Dataset("circular").Ints(circVals)
	if hasMissingCirc {
		cds.SetIntAttr("missing-value-placeholder", -1)
	}

	genomes := make([]string, len(names))
	for i := range genomes {
		genomes[i] = "mock_genome"
	}
	g.Dataset("genome").Strings(genomes)
	InstallH5(t, dir, "info.h5", root)
	return g
}

// GenomicRanges builds a genomic_ranges object over the given sequence
// universe (names/lengths/circular as in SequenceInformation) with the
// given parallel range datasets.
func GenomicRanges(t *testing.T, dir string, seqNames []string, seqLengths, seqCircular []int64, sequence, start, width, strand []int64) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "genomic_ranges", map[string]interface{}{"version": "1.0"})
	SequenceInformation(t, filepath.Join(dir, "sequence_information"), seqNames, seqLengths, seqCircular)

	root := hdf5x.NewFakeGroup()
	g := root.Group("genomic_ranges")
	g.SetStringAttr("version", "1.0")
	g.Dataset("sequence").Ints(sequence)
	g.Dataset("start").Ints(start)
	g.Dataset("width").Ints(width)
	g.Dataset("strand").Ints(strand).WithBitWidth(8, 64, 64)
	InstallH5(t, dir, "ranges.h5", root)
	return g
}

// Column describes one data_frame column for the DataFrame builder.
type Column struct {
	Name string
	Type string // integer, number, boolean, string, factor, other

	// Factor columns only.
	Levels []string
	Codes  []int64
}

// DataFrame builds a data_frame with the given row count and columns.
// "other" columns get no data/ entry; the caller supplies the matching
// other_columns/<i>/ object itself.
func DataFrame(t *testing.T, dir string, rows int64, cols []Column) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, "data_frame", map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group("data_frame")
	g.SetStringAttr("version", "1.0").SetIntAttr("row-count", rows)

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	g.Dataset("column_names").Strings(names)

	data := g.Group("data")
	for i, c := range cols {
		key := itoa(i)
		switch c.Type {
		case "other":
			// no data/ entry
		case "factor":
			sub := data.Group(key)
			sub.SetStringAttr("type", "factor")
			sub.Dataset("levels").Strings(c.Levels)
			sub.Dataset("codes").Ints(c.Codes).WithBitWidth(32, 32, 64)
		case "number":
			data.Dataset(key).Floats(make([]float64, rows)).SetStringAttr("type", "number")
		case "string":
			data.Dataset(key).Strings(make([]string, rows)).SetStringAttr("type", "string")
		default:
			data.Dataset(key).Ints(make([]int64, rows)).WithBitWidth(32, 32, 64).SetStringAttr("type", c.Type)
		}
	}
	InstallH5(t, dir, "basic_columns.h5", root)
	return g
}

// SimpleListJSON builds a simple_list in json.gz format whose contents
// are the given JSON array text, with other_contents/<i>/ populated by
// nExternal integer vectors.
func SimpleListJSON(t *testing.T, dir, contentsJSON string, nExternal int) {
	t.Helper()
	WriteOBJECT(t, dir, "simple_list", map[string]interface{}{"version": "1.0", "format": "json.gz"})
	GzipFile(t, filepath.Join(dir, "list_contents.json.gz"), []byte(contentsJSON))
	if nExternal > 0 {
		for i := 0; i < nExternal; i++ {
			IntVector(t, filepath.Join(dir, "other_contents", itoa(i)), 3, false)
		}
	}
}

// FastaSet builds a sequence_string_set of n DNA records "ACGT".
func FastaSet(t *testing.T, dir string, n int) {
	t.Helper()
	WriteOBJECT(t, dir, "sequence_string_set", map[string]interface{}{
		"version": "1.0", "length": n, "sequence_type": "DNA",
	})
	var payload []byte
	for i := 0; i < n; i++ {
		payload = append(payload, '>')
		payload = append(payload, itoa(i)...)
		payload = append(payload, '\n')
		payload = append(payload, "ACGT\n"...)
	}
	GzipFile(t, filepath.Join(dir, "sequences.fasta.gz"), payload)
}

// FastqSet builds a sequence_string_set of n DNA records "ACGT" with
// phred+33 qualities, all set to qual.
func FastqSet(t *testing.T, dir string, n int, qual byte) {
	t.Helper()
	WriteOBJECT(t, dir, "sequence_string_set", map[string]interface{}{
		"version": "1.0", "length": n, "sequence_type": "DNA",
		"quality_type": "phred", "quality_offset": 33,
	})
	var payload []byte
	for i := 0; i < n; i++ {
		payload = append(payload, '@')
		payload = append(payload, itoa(i)...)
		payload = append(payload, "\nACGT\n+\n"...)
		payload = append(payload, qual, qual, qual, qual, '\n')
	}
	GzipFile(t, filepath.Join(dir, "sequences.fastq.gz"), payload)
}

// CompressedList builds a compressed list of the given type whose
// concatenated child is built by buildChild (given the child directory
// and the required total height).
func CompressedList(t *testing.T, dir, typeName string, lengths []int64, buildChild func(childDir string, total int64)) *hdf5x.FakeGroup {
	t.Helper()
	WriteOBJECT(t, dir, typeName, map[string]interface{}{"version": "1.0"})
	root := hdf5x.NewFakeGroup()
	g := root.Group(typeName)
	g.SetStringAttr("version", "1.0")
	g.Dataset("lengths").Ints(lengths)
	InstallH5(t, dir, "partitions.h5", root)

	var total int64
	for _, l := range lengths {
		total += l
	}
	buildChild(filepath.Join(dir, "concatenated"), total)
	return g
}

// SummarizedExperiment builds a summarized_experiment with the given
// shape and one integer dense_array assay per name.
func SummarizedExperiment(t *testing.T, dir string, nrow, ncol int64, assayNames []string) {
	t.Helper()
	buildExperiment(t, dir, "summarized_experiment", nrow, ncol, assayNames)
}

// RangedSummarizedExperiment builds a ranged_summarized_experiment with
// no row_ranges (absence is permitted).
func RangedSummarizedExperiment(t *testing.T, dir string, nrow, ncol int64, assayNames []string) {
	t.Helper()
	buildExperiment(t, dir, "ranged_summarized_experiment", nrow, ncol, assayNames)
}

// SingleCellExperiment builds a single_cell_experiment with no reduced
// dimensions or alternative experiments.
func SingleCellExperiment(t *testing.T, dir string, nrow, ncol int64, assayNames []string) {
	t.Helper()
	buildExperiment(t, dir, "single_cell_experiment", nrow, ncol, assayNames)
}

func buildExperiment(t *testing.T, dir, typeName string, nrow, ncol int64, assayNames []string) {
	t.Helper()
	WriteOBJECT(t, dir, typeName, map[string]interface{}{
		"version": "1.0", "dimensions": []int64{nrow, ncol},
	})
	assaysDir := filepath.Join(dir, "assays")
	WriteNamesJSON(t, assaysDir, assayNames)
	for i := range assayNames {
		DenseArray(t, filepath.Join(assaysDir, itoa(i)), "integer", []int64{nrow, ncol})
	}
}

// PNGFile builds an image_file object holding a minimal PNG payload.
func PNGFile(t *testing.T, dir string) {
	t.Helper()
	WriteOBJECT(t, dir, "image_file", map[string]interface{}{"version": "1.0", "format": "PNG"})
	WriteFile(t, filepath.Join(dir, "file.png"), []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0})
}

func itoa(i int) string { return strconv.Itoa(i) }
