package seqio

import (
	"bufio"
	"io"
	"strconv"

	"github.com/takane-go/takane/pkg/types"
)

// ParseFASTQ scans a FASTQ-formatted stream and checks it against the
// sequence-string-set grammar: records named `0`..`numRecords-1`, residues from
// alphabet, a `+` separator line, then quality bytes whose running count
// must reach the record's residue count before the next record, each at
// least qualityLowerBound.
func ParseFASTQ(r io.Reader, numRecords int, alphabet func(byte) bool, qualityLowerBound byte) error {
	br := bufio.NewReader(r)
	for i := 0; i < numRecords; i++ {
		if err := expectByte(br, '@'); err != nil {
			return types.WrapError(types.ErrKindValue, err, "expected record %d to start with '@'", i)
		}
		name, hadNewline, err := readLine(br)
		if err != nil {
			return err
		}
		if !hadNewline {
			return types.NewError(types.ErrKindValue, "record %d's name line is not newline-terminated", i)
		}
		want := strconv.Itoa(i)
		if name != want {
			return types.NewError(types.ErrKindValue, "expected record %d's name to be '%s', got '%s'", i, want, name)
		}

		seqLen := 0
		last := true
		for {
			peek, err := br.Peek(1)
			if err == io.EOF {
				return types.NewError(types.ErrKindValue, "record %d is missing its '+' separator line", i)
			}
			if peek[0] == '+' && last {
				break
			}
			b, _ := br.ReadByte()
			if b == '\n' || b == '\r' {
				last = true
				continue
			}
			if !alphabet(b) {
				return types.NewError(types.ErrKindValue, "record %d contains residue '%c' outside its declared alphabet", i, b)
			}
			seqLen++
			last = false
		}

		if err := expectByte(br, '+'); err != nil {
			return err
		}
		if _, _, err := readLine(br); err != nil {
			return err
		}

		qualLen := 0
		for qualLen < seqLen {
			b, err := br.ReadByte()
			if err != nil {
				return types.NewError(types.ErrKindValue, "record %d's quality string ended before reaching its sequence length of %d", i, seqLen)
			}
			if b == '\n' || b == '\r' {
				continue
			}
			if b < qualityLowerBound {
				return types.NewError(types.ErrKindValue, "record %d contains an out-of-range quality score %d", i, b)
			}
			qualLen++
		}
		if err := expectByte(br, '\n'); err != nil {
			return types.NewError(types.ErrKindValue, "record %d's quality block is not newline-terminated", i)
		}
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return types.NewError(types.ErrKindValue, "found more records than the declared length of %d", numRecords)
	}
	return nil
}
