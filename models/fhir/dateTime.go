package fhir

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	PrecisionYear  = "YYYY"
	PrecisionMonth = "YYYY-MM"
	PrecisionDay   = "YYYY-MM-DD"
	PrecisionFull  = "FULL"
)

// fshLayout is the dateTime layout used for valueDateTime assignments in the
// generated CodeSystems. Values are written in UTC as "+00:00", never "Z".
const fshLayout = "2006-01-02T15:04:05+00:00"

// DateTime represents a FHIR dateTime
type DateTime struct {
	time.Time
	Precision string // "YYYY", "YYYY-MM", "YYYY-MM-DD", or "FULL"
}

// NewDateTime creates a new DateTime from a time.Time
func NewDateTime(t time.Time) DateTime {
	return DateTime{
		Time:      t,
		Precision: PrecisionFull,
	}
}

// ParseDateTime parses the date and dateTime notations found in codebook
// exports: ISO dates and dateTimes (with "T" or a space as separator, with or
// without offset), Norwegian DD.MM.YYYY dates and partial YYYY / YYYY-MM dates.
// Values without an offset are read as UTC.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DateTime{}, fmt.Errorf("empty datetime")
	}

	switch len(s) {
	case 4:
		if t, err := time.Parse("2006", s); err == nil {
			return DateTime{Time: t, Precision: PrecisionYear}, nil
		}
	case 7:
		if t, err := time.Parse("2006-01", s); err == nil {
			return DateTime{Time: t, Precision: PrecisionMonth}, nil
		}
	case 10:
		for _, layout := range []string{"2006-01-02", "02.01.2006"} {
			if t, err := time.Parse(layout, s); err == nil {
				return DateTime{Time: t, Precision: PrecisionDay}, nil
			}
		}
	}

	formats := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05-07:00",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
	}

	var lastErr error
	for _, format := range formats {
		t, err := time.Parse(format, s)
		if err == nil {
			return DateTime{Time: t, Precision: PrecisionFull}, nil
		}
		lastErr = err
	}

	return DateTime{}, fmt.Errorf("invalid datetime format: %s (last error: %v)", s, lastErr)
}

// FSH renders the value the way concept properties carry it:
// full seconds precision in UTC, whatever the parsed precision.
func (d DateTime) FSH() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.UTC().Format(fshLayout)
}

// String returns the datetime in FHIR format based on precision
func (d DateTime) String() string {
	if d.Time.IsZero() {
		return ""
	}

	switch d.Precision {
	case PrecisionYear:
		return d.Time.Format("2006")
	case PrecisionMonth:
		return d.Time.Format("2006-01")
	case PrecisionDay:
		return d.Time.Format("2006-01-02")
	default:
		return d.Time.Format(time.RFC3339)
	}
}

// MarshalJSON implements the json.Marshaler interface
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}
