// Package opaque implements the opaque file-format validators:
// thin metadata/version checks plus a magic-number or textual-prefix
// signature check on the payload file, an optional sibling index-file
// check, and an optional user-supplied strict-check callback. Deep
// format parsing (actual BAM/BCF/BigWig/... grammar) is deliberately out
// of scope; that's exactly what the strict-check callback is for.
package opaque

import (
	"os"
	"path/filepath"

	"github.com/takane-go/takane/internal/buf"
	"github.com/takane-go/takane/internal/gzutil"
	"github.com/takane-go/takane/internal/primitives"
	"github.com/takane-go/takane/pkg/types"
)

func checkVersion(md types.ObjectMetadata, typeName string) error {
	obj, err := md.TypedObject(typeName)
	if err != nil {
		return err
	}
	verStr, err := types.StringField(obj, "version", typeName)
	if err != nil {
		return err
	}
	v, err := primitives.ParseVersion(verStr)
	if err != nil {
		return err
	}
	if v.Major != 1 {
		return types.NewError(types.ErrKindVersion, "unsupported %s version %d", typeName, v.Major)
	}
	return nil
}

func indexedFlag(md types.ObjectMetadata, typeName string) (bool, error) {
	obj, err := md.TypedObject(typeName)
	if err != nil {
		return false, nil
	}
	return types.OptionalBoolField(obj, "indexed", false), nil
}

func runStrictCheck(check types.StrictCheck, payloadPath string, md types.ObjectMetadata) error {
	if check == nil {
		return nil
	}
	if err := check(payloadPath, md); err != nil {
		return types.WrapError(types.ErrKindPropagated, err, "strict check failed for '%s'", payloadPath)
	}
	return nil
}

func checkIndexFile(path string, ext string, magic []byte, label string) error {
	full := filepath.Join(path, "file"+ext)
	return primitives.CheckSignature(full, magic, label)
}

// ValidateBAM implements the bam_file validator: metadata version, a
// BGZF-decompressed "BAM\1" magic check on file.bam, optional
// file.bam.bai (BAI) or file.bam.csi (CSI) index, optional strict-check
// callback.
func ValidateBAM(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "bam_file"); err != nil {
		return err
	}
	payload := filepath.Join(path, "file.bam")
	if err := checkBGZFMagic(payload, primitives.MagicBAM, "BAM"); err != nil {
		return err
	}
	indexed, err := indexedFlag(md, "bam_file")
	if err != nil {
		return err
	}
	if indexed {
		if err := checkEitherIndex(path, "file.bam.bai", primitives.MagicBAI, "file.bam.csi", primitives.MagicCSI); err != nil {
			return err
		}
	}
	return runStrictCheck(opts.BAMStrictCheck, payload, md)
}

// ValidateBCF implements the bcf_file validator.
func ValidateBCF(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "bcf_file"); err != nil {
		return err
	}
	payload := filepath.Join(path, "file.bcf")
	if err := checkBGZFMagic(payload, primitives.MagicBCF, "BCF"); err != nil {
		return err
	}
	indexed, err := indexedFlag(md, "bcf_file")
	if err != nil {
		return err
	}
	if indexed {
		if err := checkEitherIndex(path, "file.bcf.csi", primitives.MagicCSI, "file.bcf.tbi", primitives.MagicTBI); err != nil {
			return err
		}
	}
	return runStrictCheck(opts.BCFStrictCheck, payload, md)
}

func checkBGZFMagic(path string, magic []byte, label string) error {
	got, err := gzutil.FirstBytesDecompressed(path, len(magic), true)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "could not read '%s'", path)
	}
	if string(got) != string(magic) {
		return types.NewError(types.ErrKindStructure, "'%s' does not have a valid %s signature", path, label)
	}
	return nil
}

func checkEitherIndex(path, name1 string, magic1 []byte, name2 string, magic2 []byte) error {
	p1 := filepath.Join(path, name1)
	if err := primitives.CheckSignature(p1, magic1, name1); err == nil {
		return nil
	}
	p2 := filepath.Join(path, name2)
	if err := primitives.CheckSignature(p2, magic2, name2); err == nil {
		return nil
	}
	return types.NewError(types.ErrKindStructure, "expected a valid '%s' or '%s' index file", name1, name2)
}

// ValidateBED implements the bed_file validator: a gzip/bgzip-compressed
// plain-text BED payload (no fixed magic number beyond the gzip stream
// itself), with an optional Tabix (.tbi) index when indexed.
func ValidateBED(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "bed_file"); err != nil {
		return err
	}
	payload := filepath.Join(path, "file.bed.gz")
	if err := primitives.CheckSignature(payload, primitives.MagicGzip, "gzip"); err != nil {
		return err
	}
	indexed, err := indexedFlag(md, "bed_file")
	if err != nil {
		return err
	}
	if indexed {
		if err := checkIndexFile(path, ".bed.gz.tbi", primitives.MagicTBI, "TBI"); err != nil {
			return err
		}
	}
	return runStrictCheck(opts.BEDStrictCheck, payload, md)
}

// ValidateBigWig implements the bigwig_file validator.
func ValidateBigWig(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "bigwig_file"); err != nil {
		return err
	}
	payload := filepath.Join(path, "file.bw")
	if err := checkUint32Magic(payload, primitives.MagicBigWig, "bigWig"); err != nil {
		return err
	}
	return runStrictCheck(opts.BigWigStrictCheck, payload, md)
}

// ValidateBigBed implements the bigbed_file validator.
func ValidateBigBed(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "bigbed_file"); err != nil {
		return err
	}
	payload := filepath.Join(path, "file.bb")
	if err := checkUint32Magic(payload, primitives.MagicBigBed, "bigBed"); err != nil {
		return err
	}
	return runStrictCheck(opts.BigBedStrictCheck, payload, md)
}

// checkUint32Magic accepts the magic number in either byte order, since
// bigWig/bigBed writers emit it in their native endianness.
func checkUint32Magic(path string, want uint32, label string) error {
	head, err := primitives.ReadFileHead(path, 4)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "could not open '%s'", path)
	}
	if len(head) < 4 {
		return types.NewError(types.ErrKindStructure, "'%s' is too short to carry a %s signature", path, label)
	}
	if buf.U32LE(head) != want && buf.U32BE(head) != want {
		return types.NewError(types.ErrKindStructure, "'%s' does not have a valid %s signature", path, label)
	}
	return nil
}

func checkEitherMagic(path string, magicA, magicB []byte, label string) error {
	if err := primitives.CheckSignature(path, magicA, label); err == nil {
		return nil
	}
	return primitives.CheckSignature(path, magicB, label)
}

// ValidateFASTA implements the fasta_file validator: a gzip/bgzip stream
// whose decompressed content starts with '>'.
func ValidateFASTA(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "fasta_file"); err != nil {
		return err
	}
	indexed, err := indexedFlag(md, "fasta_file")
	if err != nil {
		return err
	}
	payload := filepath.Join(path, "file.fasta.gz")
	first, err := gzutil.FirstBytesDecompressed(payload, 1, indexed)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "could not read '%s'", payload)
	}
	if len(first) == 0 || first[0] != '>' {
		return types.NewError(types.ErrKindValue, "'%s' does not start with '>'", payload)
	}
	if indexed {
		// .fai and .gzi carry no fixed magic number of their own; their
		// presence and openability is the whole check.
		if err := requireFileExists(filepath.Join(path, "file.fasta.gz.fai")); err != nil {
			return err
		}
		if err := requireFileExists(filepath.Join(path, "file.fasta.gz.gzi")); err != nil {
			return err
		}
	}
	return runStrictCheck(opts.FASTAStrictCheck, payload, md)
}

func requireFileExists(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "expected an index file at '%s'", path)
	}
	return f.Close()
}

// ValidateFASTQ implements the fastq_file validator: a gzip/bgzip stream
// whose decompressed content starts with '@'.
func ValidateFASTQ(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "fastq_file"); err != nil {
		return err
	}
	indexed, err := indexedFlag(md, "fastq_file")
	if err != nil {
		return err
	}
	payload := filepath.Join(path, "file.fastq.gz")
	first, err := gzutil.FirstBytesDecompressed(payload, 1, indexed)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "could not read '%s'", payload)
	}
	if len(first) == 0 || first[0] != '@' {
		return types.NewError(types.ErrKindValue, "'%s' does not start with '@'", payload)
	}
	return runStrictCheck(opts.FASTQStrictCheck, payload, md)
}

// ValidateGFF implements the gff_file validator: GFF2 payloads are
// accepted on a version check alone (no fixed textual prefix); GFF3
// payloads must decompress to a "##gff-version 3" prefix.
func ValidateGFF(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "gff_file"); err != nil {
		return err
	}
	obj, err := md.TypedObject("gff_file")
	if err != nil {
		return err
	}
	variant, _ := types.OptionalStringField(obj, "variant")
	indexed, err := indexedFlag(md, "gff_file")
	if err != nil {
		return err
	}
	payload := filepath.Join(path, "file.gff.gz")
	if variant == "GFF3" {
		prefix, err := gzutil.FirstBytesDecompressed(payload, len("##gff-version 3"), indexed)
		if err != nil {
			return types.WrapError(types.ErrKindStructure, err, "could not read '%s'", payload)
		}
		if string(prefix) != "##gff-version 3" {
			return types.NewError(types.ErrKindValue, "'%s' is missing the '##gff-version 3' prefix", payload)
		}
	} else {
		if _, err := gzutil.FirstBytesDecompressed(payload, 1, indexed); err != nil {
			return types.WrapError(types.ErrKindStructure, err, "could not read '%s'", payload)
		}
	}
	return runStrictCheck(opts.GFFStrictCheck, payload, md)
}

// ValidateGMT implements the gmt_file validator: a plain gzip payload
// whose gzip magic bytes are checked; the stream itself is not opened.
func ValidateGMT(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "gmt_file"); err != nil {
		return err
	}
	payload := filepath.Join(path, "file.gmt.gz")
	if err := primitives.CheckSignature(payload, primitives.MagicGzip, "gzip"); err != nil {
		return err
	}
	return runStrictCheck(opts.GMTStrictCheck, payload, md)
}

// ValidateRDS implements the rds_file validator: a gzip stream whose
// decompressed content starts with "X\n".
func ValidateRDS(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "rds_file"); err != nil {
		return err
	}
	payload := filepath.Join(path, "file.rds")
	first, err := gzutil.FirstBytesDecompressed(payload, len(primitives.MagicRDS), false)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "could not read '%s'", payload)
	}
	if string(first) != string(primitives.MagicRDS) {
		return types.NewError(types.ErrKindValue, "'%s' does not start with the RDS 'X\\n' marker", payload)
	}
	return runStrictCheck(opts.RDSStrictCheck, payload, md)
}

// imageSignatures maps each supported image format to its magic bytes.
// WEBP is handled separately since its signature spans two
// non-contiguous byte ranges.
var imageSignatures = map[string][]byte{
	"PNG":  {0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
	"GIF":  {'G', 'I', 'F', '8'},
	"JPEG": {0xFF, 0xD8},
}

var tiffLE = []byte{0x49, 0x49, 0x2A, 0x00}
var tiffBE = []byte{0x4D, 0x4D, 0x00, 0x2A}

// ValidateImage implements the image_file validator: a magic-number
// check selected by the declared format among PNG/TIFF/JPEG/GIF/WEBP.
// The advisory `image_formats` metadata field is parsed as a string
// array but not cross-checked against the signature.
func ValidateImage(path string, md types.ObjectMetadata, opts types.Options) error {
	if err := checkVersion(md, "image_file"); err != nil {
		return err
	}
	obj, err := md.TypedObject("image_file")
	if err != nil {
		return err
	}
	format, err := types.StringField(obj, "format", "image_file")
	if err != nil {
		return err
	}
	if v, ok := obj.Field("image_formats"); ok {
		if _, err := v.StringArray(); err != nil {
			return types.WrapError(types.ErrKindValue, err, "'image_formats' should be an array of strings")
		}
	}

	payload := filepath.Join(path, "file."+imageExtension(format))
	switch format {
	case "TIFF":
		if err := checkEitherMagic(payload, tiffLE, tiffBE, "TIFF"); err != nil {
			return err
		}
	case "WEBP":
		if err := checkWEBP(payload); err != nil {
			return err
		}
	default:
		magic, ok := imageSignatures[format]
		if !ok {
			return types.NewError(types.ErrKindValue, "unknown image format '%s'", format)
		}
		if err := primitives.CheckSignature(payload, magic, format); err != nil {
			return err
		}
	}
	return runStrictCheck(opts.ImageStrictCheck, payload, md)
}

func imageExtension(format string) string {
	switch format {
	case "PNG":
		return "png"
	case "TIFF":
		return "tiff"
	case "JPEG":
		return "jpg"
	case "GIF":
		return "gif"
	case "WEBP":
		return "webp"
	default:
		return "bin"
	}
}

func checkWEBP(path string) error {
	data, err := primitives.ReadFileHead(path, 12)
	if err != nil {
		return types.WrapError(types.ErrKindStructure, err, "could not read '%s'", path)
	}
	if len(data) < 12 {
		return types.NewError(types.ErrKindStructure, "'%s' is too short to be a WEBP file", path)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return types.NewError(types.ErrKindStructure, "'%s' does not have a valid WEBP signature", path)
	}
	return nil
}
