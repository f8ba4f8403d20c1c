package nlk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SanteonNL/nlk/models/fhir"
	"golang.org/x/exp/slices"
)

// Standardized codebook column names, as produced by the Excel converter.
const (
	ColCode             = "kode"
	ColDisplay          = "norsk_bruksnavn"
	ColDefinition       = "kodedefinisjon"
	ColValidFrom        = "gyldig_fra"
	ColValidTo          = "gyldig_til"
	ColChangeDate       = "endringsdato"
	ColReplacedBy       = "erstattes_av"
	ColComponent        = "komponent"
	ColComponentSpec    = "komponent_spesifikasjon"
	ColSystem           = "system"
	ColSystemSpec       = "system_spesifikasjon"
	ColPropertyKind     = "egenskapsart"
	ColPropertyKindSpec = "egenskapsart_spesifikasjon"
	ColUnit             = "enhet"
	ColPrimaryDomain    = "primært_fagområde"
	ColSecondaryDomain  = "sekundært_fagområde"
	ColGrouping         = "gruppering"
)

// Columns lists the known codebook columns in export order.
var Columns = []string{
	ColCode, ColDisplay, ColDefinition, ColValidFrom, ColValidTo, ColChangeDate,
	ColReplacedBy, ColComponent, ColComponentSpec, ColSystem, ColSystemSpec,
	ColPropertyKind, ColPropertyKindSpec, ColUnit, ColPrimaryDomain,
	ColSecondaryDomain, ColGrouping,
}

// DateColumns are parsed into time values when a row is read.
var DateColumns = []string{ColValidFrom, ColValidTo, ColChangeDate}

var ErrMissingColumns = errors.New("missing required columns")

// nullMarkers are cell values read as "no value".
var nullMarkers = []string{"", "None", "none", "null", "NULL", "nan", "NaN", "NA", "N/A", "n/a", "<NA>", "NaT"}

// IsNull reports whether a raw cell value carries no value.
func IsNull(s string) bool {
	return slices.Contains(nullMarkers, strings.TrimSpace(s))
}

type Status string

const (
	StatusActive  Status = "active"
	StatusRetired Status = "retired"
	StatusDraft   Status = "draft"
)

// LabCode is one row of the laboratory codebook.
type LabCode struct {
	Code             string     `csv:"kode" json:"kode" db:"kode"`
	Display          string     `csv:"norsk_bruksnavn" json:"norsk_bruksnavn,omitempty" db:"norsk_bruksnavn"`
	Definition       string     `csv:"kodedefinisjon" json:"kodedefinisjon,omitempty" db:"kodedefinisjon"`
	ValidFrom        *time.Time `csv:"gyldig_fra" json:"gyldig_fra,omitempty" db:"gyldig_fra"`
	ValidTo          *time.Time `csv:"gyldig_til" json:"gyldig_til,omitempty" db:"gyldig_til"`
	ChangeDate       *time.Time `csv:"endringsdato" json:"endringsdato,omitempty" db:"endringsdato"`
	ReplacedBy       string     `csv:"erstattes_av" json:"erstattes_av,omitempty" db:"erstattes_av"`
	Component        string     `csv:"komponent" json:"komponent,omitempty" db:"komponent"`
	ComponentSpec    string     `csv:"komponent_spesifikasjon" json:"komponent_spesifikasjon,omitempty" db:"komponent_spesifikasjon"`
	System           string     `csv:"system" json:"system,omitempty" db:"system"`
	SystemSpec       string     `csv:"system_spesifikasjon" json:"system_spesifikasjon,omitempty" db:"system_spesifikasjon"`
	PropertyKind     string     `csv:"egenskapsart" json:"egenskapsart,omitempty" db:"egenskapsart"`
	PropertyKindSpec string     `csv:"egenskapsart_spesifikasjon" json:"egenskapsart_spesifikasjon,omitempty" db:"egenskapsart_spesifikasjon"`
	Unit             string     `csv:"enhet" json:"enhet,omitempty" db:"enhet"`
	PrimaryDomain    string     `csv:"primært_fagområde" json:"primært_fagområde,omitempty" db:"primaert_fagomraade"`
	SecondaryDomain  string     `csv:"sekundært_fagområde" json:"sekundært_fagområde,omitempty" db:"sekundaert_fagomraade"`
	Grouping         string     `csv:"gruppering" json:"gruppering,omitempty" db:"gruppering"`
}

// Header maps column names to their position in a record.
type Header map[string]int

// IndexHeader builds a Header from a header record. The first occurrence of a
// name wins.
func IndexHeader(record []string) Header {
	h := make(Header, len(record))
	for i, c := range record {
		c = strings.TrimSpace(c)
		if _, ok := h[c]; !ok {
			h[c] = i
		}
	}
	return h
}

// Has reports whether the column is present.
func (h Header) Has(col string) bool {
	_, ok := h[col]
	return ok
}

// Value returns the trimmed cell for col, or "" when the column is absent or
// the cell holds a null marker.
func (h Header) Value(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[i])
	if IsNull(v) {
		return ""
	}
	return v
}

// Missing returns the required columns that are not in the header.
func (h Header) Missing(required ...string) []string {
	var missing []string
	for _, col := range required {
		if !h.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// RequireColumns returns ErrMissingColumns when any required column is absent.
func (h Header) RequireColumns(required ...string) error {
	if missing := h.Missing(required...); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// FromRecord reads a LabCode from a CSV record. Unparseable dates are left nil.
func FromRecord(h Header, row []string) LabCode {
	return LabCode{
		Code:             h.Value(row, ColCode),
		Display:          h.Value(row, ColDisplay),
		Definition:       h.Value(row, ColDefinition),
		ValidFrom:        ParseDate(h.Value(row, ColValidFrom)),
		ValidTo:          ParseDate(h.Value(row, ColValidTo)),
		ChangeDate:       ParseDate(h.Value(row, ColChangeDate)),
		ReplacedBy:       h.Value(row, ColReplacedBy),
		Component:        h.Value(row, ColComponent),
		ComponentSpec:    h.Value(row, ColComponentSpec),
		System:           h.Value(row, ColSystem),
		SystemSpec:       h.Value(row, ColSystemSpec),
		PropertyKind:     h.Value(row, ColPropertyKind),
		PropertyKindSpec: h.Value(row, ColPropertyKindSpec),
		Unit:             h.Value(row, ColUnit),
		PrimaryDomain:    h.Value(row, ColPrimaryDomain),
		SecondaryDomain:  h.Value(row, ColSecondaryDomain),
		Grouping:         h.Value(row, ColGrouping),
	}
}

// ParseDate parses a codebook date cell. Empty and invalid values yield nil.
func ParseDate(s string) *time.Time {
	if IsNull(s) {
		return nil
	}
	dt, err := fhir.ParseDateTime(s)
	if err != nil {
		return nil
	}
	t := dt.Time
	return &t
}

// DisplayOrCode returns the display name, falling back to the code.
func (c LabCode) DisplayOrCode() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Code
}

// Status derives the publication status at the given instant.
func (c LabCode) Status(now time.Time) Status {
	if c.ValidTo != nil && c.ValidTo.Before(now) {
		return StatusRetired
	}
	if c.ValidFrom != nil && c.ValidFrom.After(now) {
		return StatusDraft
	}
	return StatusActive
}

// IsActive reports whether the code is in force at now: started, and either
// open-ended or not yet expired.
func (c LabCode) IsActive(now time.Time) bool {
	if c.ValidFrom == nil || c.ValidFrom.After(now) {
		return false
	}
	return c.ValidTo == nil || !c.ValidTo.Before(now)
}

// IsHistorical reports whether the code expired before now.
func (c LabCode) IsHistorical(now time.Time) bool {
	return c.ValidTo != nil && c.ValidTo.Before(now)
}

// FormatDate renders a date cell for CSV output.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
