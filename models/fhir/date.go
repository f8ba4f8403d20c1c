package fhir

import (
	"time"
)

// Date represents a FHIR date, as used for the CodeSystem ^date element.
type Date struct {
	time.Time
}

// NewDate creates a new Date from a time.Time
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// String returns the date in YYYY-MM-DD format
func (d Date) String() string {
	return d.Format("2006-01-02")
}
