package seqio

import (
	"bufio"
	"io"
	"strconv"

	"github.com/takane-go/takane/pkg/types"
)

// ParseFASTA scans a FASTA-formatted stream (no quality lines) and checks
// it against the sequence-string-set grammar: records named `0`..`numRecords-1` in order,
// residues drawn from alphabet, newlines within a residue block ignored,
// and the final record terminated by a newline.
func ParseFASTA(r io.Reader, numRecords int, alphabet func(byte) bool) error {
	br := bufio.NewReader(r)
	for i := 0; i < numRecords; i++ {
		if err := expectByte(br, '>'); err != nil {
			return types.WrapError(types.ErrKindValue, err, "expected record %d to start with '>'", i)
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
		last := true
		for {
			peek, err := br.Peek(1)
			if err == io.EOF {
				break
			}
			if peek[0] == '>' && last {
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
			last = false
		}
		if i == numRecords-1 && !last {
			return types.NewError(types.ErrKindValue, "the final record must end with a newline")
		}
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return types.NewError(types.ErrKindValue, "found more records than the declared length of %d", numRecords)
	}
	return nil
}

func expectByte(br *bufio.Reader, want byte) error {
	b, err := br.ReadByte()
	if err != nil {
		return types.NewError(types.ErrKindValue, "unexpected end of file")
	}
	if b != want {
		return types.NewError(types.ErrKindValue, "expected '%c', got '%c'", want, b)
	}
	return nil
}

// readLine reads up to and including the next '\n', returning the line
// with any trailing "\r\n"/"\n" stripped, and whether a newline was found
// before EOF.
func readLine(br *bufio.Reader) (string, bool, error) {
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, types.WrapError(types.ErrKindPropagated, err, "read error")
	}
	hadNewline := len(line) > 0 && line[len(line)-1] == '\n'
	if hadNewline {
		line = line[:len(line)-1]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
	}
	return line, hadNewline, nil
}
