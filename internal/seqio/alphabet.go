// Package seqio implements the FASTA/FASTQ grammars and alphabet checks
// needed by the sequence_string_set validator, streaming over a
// gzip/bgzip byte source rather than materializing the whole payload.
package seqio

import "github.com/takane-go/takane/pkg/types"

// SequenceType is the alphabet family declared by a sequence_string_set's
// metadata.
type SequenceType int

const (
	DNA SequenceType = iota
	RNA
	AA
	Custom
)

// ParseSequenceType maps a metadata string to a SequenceType.
func ParseSequenceType(s string) (SequenceType, error) {
	switch s {
	case "DNA":
		return DNA, nil
	case "RNA":
		return RNA, nil
	case "AA":
		return AA, nil
	case "custom":
		return Custom, nil
	default:
		return 0, types.NewError(types.ErrKindValue, "unknown sequence type '%s'", s)
	}
}

// alphabets gives the case-insensitive residue set for each sequence
// type; custom sequences accept any printable non-space ASCII (33-126)
// instead.
var alphabets = map[SequenceType]string{
	DNA: "ACGRYSWKMBDHVN.-T",
	RNA: "ACGRYSWKMBDHVN.-U",
	AA:  "ACDEFGHIKLMNPQRSTVWY",
}

// Alphabet returns a membership predicate for t's residue alphabet.
func Alphabet(t SequenceType) func(byte) bool {
	if t == Custom {
		return func(b byte) bool { return b >= 33 && b <= 126 }
	}
	letters := alphabets[t]
	var table [128]bool
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		table[c] = true
		if c >= 'A' && c <= 'Z' {
			table[c+('a'-'A')] = true
		}
	}
	return func(b byte) bool { return b < 128 && table[b] }
}

// QualityType is the optional per-record quality encoding declared by a
// sequence_string_set's metadata.
type QualityType int

const (
	QualityNone QualityType = iota
	QualityPhred
	QualitySolexa
)

// ParseQualityType maps a metadata string to a QualityType.
func ParseQualityType(s string) (QualityType, error) {
	switch s {
	case "", "none":
		return QualityNone, nil
	case "phred":
		return QualityPhred, nil
	case "solexa":
		return QualitySolexa, nil
	default:
		return 0, types.NewError(types.ErrKindValue, "unknown quality type '%s'", s)
	}
}

// QualityLowerBound returns the minimum valid raw quality byte for the
// given quality/offset combination.
func QualityLowerBound(qt QualityType, offset int) (byte, error) {
	switch qt {
	case QualityPhred:
		switch offset {
		case 33:
			return 33, nil
		case 64:
			return 64, nil
		default:
			return 0, types.NewError(types.ErrKindValue, "phred quality requires an offset of 33 or 64, got %d", offset)
		}
	case QualitySolexa:
		return 59, nil
	default:
		return 0, types.NewError(types.ErrKindValue, "quality lower bound requested for a set with no quality type")
	}
}
