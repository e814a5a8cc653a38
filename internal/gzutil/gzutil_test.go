package gzutil

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/biogo/hts/bgzf"
	"github.com/stretchr/testify/require"
)

func writeGzip(t *testing.T, path string, content []byte) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestOpenGzipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.gz")
	writeGzip(t, path, []byte("hello takane"))

	rc, err := OpenGzip(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello takane", string(data))
}

func TestOpenGzipRejectsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.gz")
	require.NoError(t, os.WriteFile(path, []byte("not compressed"), 0o644))

	_, err := OpenGzip(path)
	require.Error(t, err)
}

func TestOpenBGZFRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.bgz")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := bgzf.NewWriter(f, 1)
	_, err = w.Write([]byte("block gzip content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	rc, err := OpenBGZF(path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "block gzip content", string(data))
}

func TestFirstBytesDecompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.gz")
	writeGzip(t, path, []byte(">0\nACGT\n"))

	head, err := FirstBytesDecompressed(path, 1, false)
	require.NoError(t, err)
	require.Equal(t, []byte(">"), head)

	// Asking for more bytes than the stream holds returns what's there.
	head, err = FirstBytesDecompressed(path, 100, false)
	require.NoError(t, err)
	require.Equal(t, ">0\nACGT\n", string(head))
}
