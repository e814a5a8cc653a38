package atomic

import (
	"path/filepath"

	"github.com/takane-go/takane/internal/dispatch"
	"github.com/takane-go/takane/internal/gzutil"
	"github.com/takane-go/takane/internal/seqio"
	"github.com/takane-go/takane/pkg/types"
)

// ValidateSequenceStringSet implements the sequence_string_set validator
//: a FASTA (no quality_type) or FASTQ (with quality_type)
// payload whose record count matches the declared length, residues fall
// within the declared alphabet, and (for FASTQ) quality bytes meet the
// declared encoding's lower bound. Optional sibling sequence_data/
// (DATA_FRAME) and other_data/ (SIMPLE_LIST) are validated if present.
func ValidateSequenceStringSet(path string, md types.ObjectMetadata, opts types.Options) error {
	opts = opts.WithDefaults()

	obj, err := md.TypedObject("sequence_string_set")
	if err != nil {
		return err
	}
	length, err := types.IntField(obj, "length", "sequence_string_set")
	if err != nil {
		return err
	}
	if length < 0 {
		return types.NewError(types.ErrKindValue, "'length' must be non-negative")
	}

	typeStr, err := types.StringField(obj, "sequence_type", "sequence_string_set")
	if err != nil {
		return err
	}
	seqType, err := seqio.ParseSequenceType(typeStr)
	if err != nil {
		return err
	}
	alphabet := seqio.Alphabet(seqType)

	qualityTypeStr, hasQuality := types.OptionalStringField(obj, "quality_type")
	qt, err := seqio.ParseQualityType(qualityTypeStr)
	if err != nil {
		return err
	}
	hasQuality = hasQuality && qt != seqio.QualityNone

	var payload string
	var parse func() error
	if hasQuality {
		offset := 33
		if v, ok := obj.Field("quality_offset"); ok {
			n, ok := v.Int()
			if !ok {
				return types.NewError(types.ErrKindValue, "'quality_offset' should be a number")
			}
			offset = n
		}
		lower, err := seqio.QualityLowerBound(qt, offset)
		if err != nil {
			return err
		}
		payload = filepath.Join(path, "sequences.fastq.gz")
		parse = func() error {
			rc, err := gzutil.OpenGzip(payload)
			if err != nil {
				return types.WrapError(types.ErrKindStructure, err, "could not open '%s'", payload)
			}
			defer rc.Close()
			return seqio.ParseFASTQ(rc, length, alphabet, lower)
		}
	} else {
		payload = filepath.Join(path, "sequences.fasta.gz")
		parse = func() error {
			rc, err := gzutil.OpenGzip(payload)
			if err != nil {
				return types.WrapError(types.ErrKindStructure, err, "could not open '%s'", payload)
			}
			defer rc.Close()
			return seqio.ParseFASTA(rc, length, alphabet)
		}
	}
	if err := parse(); err != nil {
		return err
	}

	if seqData, ok := dirExists(path, "sequence_data"); ok {
		if err := dispatch.ValidateChild(seqData, "", types.InterfaceDataFrame, opts); err != nil {
			return err
		}
		h, err := dispatch.Height(seqData, opts)
		if err != nil {
			return err
		}
		if h != int64(length) {
			return types.NewError(types.ErrKindValue, "sequence_data should have %d rows, got %d", length, h)
		}
	}
	if otherData, ok := dirExists(path, "other_data"); ok {
		if err := dispatch.ValidateChild(otherData, "", types.InterfaceSimpleList, opts); err != nil {
			return err
		}
	}

	return nil
}

// HeightSequenceStringSet returns the declared length.
func HeightSequenceStringSet(path string, md types.ObjectMetadata, opts types.Options) (int64, error) {
	obj, err := md.TypedObject("sequence_string_set")
	if err != nil {
		return 0, err
	}
	length, err := types.IntField(obj, "length", "sequence_string_set")
	if err != nil {
		return 0, err
	}
	return int64(length), nil
}
