package primitives

import (
	"regexp"

	"github.com/takane-go/takane/internal/hdf5x"
	"github.com/takane-go/takane/pkg/types"
)

// StringFormat is the constrained shape a string dataset's elements must
// satisfy, mirroring the "format" attribute recognized by
// validate_string_format.
type StringFormat int

const (
	FormatNone StringFormat = iota
	FormatDate
	FormatDateTime
)

var (
	dateRe     = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
	dateTimeRe = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]+)?(Z|[+-][0-9]{2}:[0-9]{2})$`)
)

// ParseStringFormat maps the "format" attribute value to a StringFormat,
// rejecting anything unrecognized.
func ParseStringFormat(s string) (StringFormat, error) {
	switch s {
	case "", "none":
		return FormatNone, nil
	case "date":
		return FormatDate, nil
	case "date-time":
		return FormatDateTime, nil
	default:
		return FormatNone, types.NewError(types.ErrKindValue, "unknown string format '%s'", s)
	}
}

// ValidateStringDataset scans ds in blocks of blockSize, checking each
// non-null, non-placeholder element against format. A placeholder value
// (when hasPlaceholder is true) is always exempt, matching takane's
// convention of letting a declared missing-value sentinel violate the
// format freely.
func ValidateStringDataset(ds hdf5x.Dataset, format StringFormat, hasPlaceholder bool, placeholder string, blockSize int) error {
	if format == FormatNone {
		return nil
	}
	var re *regexp.Regexp
	var label string
	switch format {
	case FormatDate:
		re, label = dateRe, "date"
	case FormatDateTime:
		re, label = dateTimeRe, "date-time"
	}

	var violating string
	var found bool
	err := ds.IterateString(blockSize, func(block []hdf5x.NullableString) error {
		for _, v := range block {
			if v.Null {
				continue
			}
			if hasPlaceholder && v.Value == placeholder {
				continue
			}
			if !re.MatchString(v.Value) {
				violating, found = v.Value, true
				return errStopScan
			}
		}
		return nil
	})
	if err != nil && err != errStopScan {
		return err
	}
	if found {
		return types.NewError(types.ErrKindValue, "string '%s' does not match the expected %s format", violating, label)
	}
	return nil
}

var errStopScan = types.NewError(types.ErrKindPropagated, "scan stopped early")
