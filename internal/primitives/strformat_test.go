package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/takane-go/takane/internal/hdf5x"
)

func stringDataset(values ...string) hdf5x.Dataset {
	g := hdf5x.NewFakeGroup()
	return g.Dataset("values").Strings(values)
}

func TestParseStringFormat(t *testing.T) {
	for in, want := range map[string]StringFormat{
		"": FormatNone, "none": FormatNone, "date": FormatDate, "date-time": FormatDateTime,
	} {
		got, err := ParseStringFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}
	_, err := ParseStringFormat("datetime")
	assert.Error(t, err)
}

func TestValidateStringDatasetDate(t *testing.T) {
	ds := stringDataset("2024-02-29", "1999-01-01")
	require.NoError(t, ValidateStringDataset(ds, FormatDate, false, "", 1))

	ds = stringDataset("2024-2-9")
	require.Error(t, ValidateStringDataset(ds, FormatDate, false, "", 1))
}

func TestValidateStringDatasetDateTime(t *testing.T) {
	for _, ok := range []string{
		"2024-01-31T12:34:56Z",
		"2024-01-31T12:34:56.789+02:00",
	} {
		require.NoError(t, ValidateStringDataset(stringDataset(ok), FormatDateTime, false, "", 10), "input %q", ok)
	}
	for _, bad := range []string{
		"2024-01-31 12:34:56",
		"2024-01-31T12:34",
		"2024-01-31T12:34:56",
	} {
		require.Error(t, ValidateStringDataset(stringDataset(bad), FormatDateTime, false, "", 10), "input %q", bad)
	}
}

func TestValidateStringDatasetPlaceholderExempt(t *testing.T) {
	ds := stringDataset("2024-01-31", "NA")
	require.Error(t, ValidateStringDataset(ds, FormatDate, false, "", 10))
	require.NoError(t, ValidateStringDataset(ds, FormatDate, true, "NA", 10))
}
