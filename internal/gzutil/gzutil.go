// Package gzutil provides the "gzip/bgzip reader" external collaborator
// described in takane's external interfaces: streaming byte access over
// gzip and bgzip-compressed payload files.
package gzutil

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bgzf"
)

// OpenGzip opens path and returns a reader over its decompressed contents.
// Plain gzip is sufficient for the single-shot, non-indexed payloads takane
// uses it for (simple_list's list_contents.json.gz, gmt_file).
func OpenGzip(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip stream %q: %w", path, err)
	}
	return &gzipReadCloser{gz: gz, f: f}, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	err := g.gz.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// OpenBGZF opens a BGZF-compressed (indexed-capable block gzip) payload
// file, as used for bgzipped FASTA/FASTQ/VCF-adjacent streams. BGZF is
// gzip-compatible at the byte-stream level but is organized into
// independently decompressible blocks, enabling the ".gzi"-style indexing
// that the opaque-file validators check for under options.Indexed.
func OpenBGZF(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	r, err := bgzf.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open bgzf stream %q: %w", path, err)
	}
	return &bgzfReadCloser{r: r, f: f}, nil
}

type bgzfReadCloser struct {
	r *bgzf.Reader
	f *os.File
}

func (b *bgzfReadCloser) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *bgzfReadCloser) Close() error {
	b.r.Close()
	return b.f.Close()
}

// FirstBytesDecompressed returns up to the first n decompressed bytes of a
// gzip (or bgzf) stream (fewer if the stream is shorter), used by
// opaque-file validators to distinguish FASTA ('>') from FASTQ ('@')
// content, and to check textual magic prefixes like "##gff-version 3".
func FirstBytesDecompressed(path string, n int, bgzipped bool) ([]byte, error) {
	var rc io.ReadCloser
	var err error
	if bgzipped {
		rc, err = OpenBGZF(path)
	} else {
		rc, err = OpenGzip(path)
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(rc, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:read], nil
}
