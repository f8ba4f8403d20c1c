package fsh

import (
	"github.com/SanteonNL/nlk/models/fhir"
	"github.com/SanteonNL/nlk/models/nlk"
	"golang.org/x/exp/slices"
)

// missing stands in for a property a concept does not carry.
const missing = "missing"

// Mismatch is a field whose codebook and CodeSystem values differ.
type Mismatch struct {
	Code  string `json:"code" yaml:"code"`
	Field string `json:"field" yaml:"field"`
	CSV   string `json:"csv" yaml:"csv"`
	FSH   string `json:"fsh" yaml:"fsh"`
}

// Comparison holds the differences between a codebook domain and a
// CodeSystem.
type Comparison struct {
	Domain     string     `json:"domain" yaml:"domain"`
	CSVCodes   int        `json:"csv_codes" yaml:"csv_codes"`
	FSHCodes   int        `json:"fsh_codes" yaml:"fsh_codes"`
	Missing    []string   `json:"missing,omitempty" yaml:"missing,omitempty"`
	Extra      []string   `json:"extra,omitempty" yaml:"extra,omitempty"`
	Mismatches []Mismatch `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
	Compared   int        `json:"compared" yaml:"compared"`
}

// Perfect reports whether both sides hold the same codes with the same values.
func (c *Comparison) Perfect() bool {
	return len(c.Missing) == 0 && len(c.Extra) == 0 && len(c.Mismatches) == 0
}

func propertyOr(c *Concept, fallback string, codes ...string) string {
	for _, code := range codes {
		if v, ok := c.Property(code); ok {
			return v
		}
	}
	return fallback
}

// Compare checks the codebook rows whose primary or secondary domain equals
// domain against the concepts of cs. The first row of a code is compared.
func Compare(codes []nlk.LabCode, cs *CodeSystem, domain string) *Comparison {
	csv := make(map[string]nlk.LabCode)
	var order []string
	for _, c := range codes {
		if c.PrimaryDomain != domain && c.SecondaryDomain != domain {
			continue
		}
		if _, ok := csv[c.Code]; ok {
			continue
		}
		csv[c.Code] = c
		order = append(order, c.Code)
	}

	fsh := make(map[string]*Concept, len(cs.Concepts))
	for _, c := range cs.Concepts {
		if _, ok := fsh[c.Code]; !ok {
			fsh[c.Code] = c
		}
	}

	cmp := &Comparison{Domain: domain, CSVCodes: len(csv), FSHCodes: len(fsh)}
	for code := range fsh {
		if _, ok := csv[code]; !ok {
			cmp.Extra = append(cmp.Extra, code)
		}
	}
	slices.Sort(cmp.Extra)

	for _, code := range order {
		row := csv[code]
		concept, ok := fsh[code]
		if !ok {
			cmp.Missing = append(cmp.Missing, code)
			continue
		}
		cmp.Compared++

		add := func(field, csvValue, fshValue string) {
			if csvValue != fshValue {
				cmp.Mismatches = append(cmp.Mismatches, Mismatch{Code: code, Field: field, CSV: csvValue, FSH: fshValue})
			}
		}
		add("display", row.DisplayOrCode(), concept.Display)
		if row.ValidFrom != nil {
			add("validFrom", fhir.NewDateTime(*row.ValidFrom).FSH(), propertyOr(concept, missing, "validFrom", "effectiveDate"))
		}
		add("primaryDomain", row.PrimaryDomain, propertyOr(concept, missing, "primaryDomain"))
	}
	slices.Sort(cmp.Missing)
	return cmp
}
