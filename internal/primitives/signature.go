package primitives

import (
	"bytes"

	"github.com/takane-go/takane/internal/mmfile"
	"github.com/takane-go/takane/pkg/types"
)

// CheckSignature maps path read-only and confirms its first len(magic)
// bytes match magic exactly, failing with ErrKindStructure otherwise. Used
// by the opaque file validators to confirm the magic numbers of index
// files (BAI/CSI/TBI), gzip payloads (BED, GMT) and images; the payloads
// can be multi-gigabyte, so the mapping is the only touch.
func CheckSignature(path string, magic []byte, typeLabel string) error {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "could not open '%s'", path)
	}
	defer cleanup()

	if len(data) < len(magic) {
		return types.NewError(types.ErrKindStructure, "'%s' is too short to carry a %s signature", path, typeLabel)
	}
	if !bytes.Equal(data[:len(magic)], magic) {
		return types.NewError(types.ErrKindStructure, "'%s' does not have a valid %s signature", path, typeLabel)
	}
	return nil
}

// ReadFileHead maps path and copies out its first n bytes (fewer if the
// file is shorter).
func ReadFileHead(path string, n int) ([]byte, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if len(data) < n {
		n = len(data)
	}
	out := make([]byte, n)
	copy(out, data[:n])
	return out, nil
}

// Known magic numbers for the opaque payload file types. BAM and BCF are
// BGZF-wrapped, so theirs are matched against the decompressed stream.
var (
	MagicBAM  = []byte("BAM\x01")
	MagicBCF  = []byte("BCF\x02\x01")
	MagicBAI  = []byte("BAI\x01")
	MagicCSI  = []byte("CSI\x01")
	MagicTBI  = []byte("TBI\x01")
	MagicGzip = []byte{0x1f, 0x8b}
	MagicRDS  = []byte{'X', '\n'} // serialized R objects begin with the "X" format marker and a newline.
)

// BigWig and bigBed files identify themselves with a fixed uint32 written
// in the producer's native byte order, so both orders are acceptable.
const (
	MagicBigWig uint32 = 0x888FFC26
	MagicBigBed uint32 = 0x8789F2EB
)
