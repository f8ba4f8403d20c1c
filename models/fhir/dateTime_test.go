package fhir

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		in        string
		precision string
		fsh       string
	}{
		{"2013-01-25", PrecisionDay, "2013-01-25T00:00:00+00:00"},
		{"25.01.2013", PrecisionDay, "2013-01-25T00:00:00+00:00"},
		{"2013-01-25 10:30:00", PrecisionFull, "2013-01-25T10:30:00+00:00"},
		{"2013-01-25T10:30:00", PrecisionFull, "2013-01-25T10:30:00+00:00"},
		{"2013-01-25T10:30:00+02:00", PrecisionFull, "2013-01-25T08:30:00+00:00"},
		{"2013", PrecisionYear, "2013-01-01T00:00:00+00:00"},
		{"2013-04", PrecisionMonth, "2013-04-01T00:00:00+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDateTime(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.precision, got.Precision)
			assert.Equal(t, tt.fsh, got.FSH())
		})
	}
}

func TestParseDateTimeInvalid(t *testing.T) {
	for _, in := range []string{"", "  ", "not a date", "2013-13-45"} {
		_, err := ParseDateTime(in)
		assert.Error(t, err, in)
	}
}

func TestDateTimeFSHConvertsToUTC(t *testing.T) {
	oslo := time.FixedZone("CET", 3600)
	d := NewDateTime(time.Date(2013, 1, 25, 0, 30, 0, 0, oslo))
	assert.Equal(t, "2013-01-24T23:30:00+00:00", d.FSH())
	assert.Equal(t, "", DateTime{}.FSH())
}

func TestDateTimeJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"25.01.2013", `"2013-01-25"`},
		{"2013-04", `"2013-04"`},
		{"2013", `"2013"`},
		{"2013-01-25T10:30:00+02:00", `"2013-01-25T10:30:00+02:00"`},
	}
	for _, tt := range tests {
		d, err := ParseDateTime(tt.in)
		require.NoError(t, err)
		b, err := json.Marshal(d)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(b), tt.in)
	}

	b, err := json.Marshal(DateTime{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(b))
}

func TestDate(t *testing.T) {
	d := NewDate(time.Date(2024, 9, 3, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-09-03", d.String())
}
