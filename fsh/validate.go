package fsh

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// headerScanLines bounds the search for required header elements.
const headerScanLines = 100

var requiredHeaderElements = []string{
	"CodeSystem:",
	"Id:",
	"Title:",
	"Description:",
	"* ^url",
	"* ^version",
	"* ^status",
	"* ^content",
	"* ^count",
}

var validPropertyTypes = []string{"code", "string", "dateTime", "integer", "boolean", "decimal"}

// Finding is a single validation result. Line is 0 for file level findings.
type Finding struct {
	Line     int      `json:"line" yaml:"line"`
	Type     string   `json:"type" yaml:"type"`
	Message  string   `json:"message" yaml:"message"`
	Severity Severity `json:"severity" yaml:"severity"`
}

type PropertyUsage struct {
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

type Statistics struct {
	Lines             int                      `json:"total_lines" yaml:"total_lines"`
	Concepts          int                      `json:"total_concepts" yaml:"total_concepts"`
	PropertiesDefined int                      `json:"total_properties_defined" yaml:"total_properties_defined"`
	PropertyInstances int                      `json:"total_property_instances" yaml:"total_property_instances"`
	Errors            int                      `json:"errors" yaml:"errors"`
	Warnings          int                      `json:"warnings" yaml:"warnings"`
	Usage             map[string]PropertyUsage `json:"property_usage" yaml:"property_usage"`
}

type ValidationResult struct {
	File     string     `json:"file,omitempty" yaml:"file,omitempty"`
	Findings []Finding  `json:"findings" yaml:"findings"`
	Stats    Statistics `json:"statistics" yaml:"statistics"`
}

func (r *ValidationResult) filter(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

func (r *ValidationResult) Errors() []Finding   { return r.filter(SeverityError) }
func (r *ValidationResult) Warnings() []Finding { return r.filter(SeverityWarning) }

// Passed reports whether no errors were found. Warnings do not fail a file.
func (r *ValidationResult) Passed() bool {
	return r.Stats.Errors == 0
}

// Validator checks a CodeSystem file for structure, syntax and property
// consistency.
type Validator struct {
	log zerolog.Logger
}

func NewValidator(log zerolog.Logger) *Validator {
	return &Validator{log: log}
}

type validation struct {
	lines    []string
	cs       *CodeSystem
	concepts []*Concept
	defined  []string
	result   *ValidationResult
}

func (vd *validation) add(line int, typ string, sev Severity, format string, args ...interface{}) {
	vd.result.Findings = append(vd.result.Findings, Finding{
		Line:     line,
		Type:     typ,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
	})
}

// ValidateFile validates the CodeSystem in path.
func (v *Validator) ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	v.log.Info().Str("file", path).Msg("Validating CodeSystem")

	result, err := v.Validate(string(data))
	if err != nil {
		return nil, err
	}
	result.File = path
	return result, nil
}

// Validate runs all checks over content.
func (v *Validator) Validate(content string) (*ValidationResult, error) {
	cs, err := ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CodeSystem: %w", err)
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if content == "" {
		lines = nil
	}
	vd := &validation{
		lines:  lines,
		cs:     cs,
		result: &ValidationResult{},
	}

	vd.header()
	vd.propertyDefinitions()
	vd.conceptDefinitions()
	vd.syntax()
	vd.consistency()
	vd.statistics()

	v.log.Info().
		Int("concepts", vd.result.Stats.Concepts).
		Int("errors", vd.result.Stats.Errors).
		Int("warnings", vd.result.Stats.Warnings).
		Msg("Validated CodeSystem")
	return vd.result, nil
}

func (vd *validation) header() {
	found := make(map[string]bool)
	for i, line := range vd.lines {
		if i >= headerScanLines {
			break
		}
		line = strings.TrimSpace(line)
		for _, el := range requiredHeaderElements {
			if strings.Contains(line, el) {
				found[el] = true
			}
		}
	}
	for _, el := range requiredHeaderElements {
		if !found[el] {
			vd.add(0, "MISSING_REQUIRED", SeverityError, "Missing required CodeSystem element: %s", el)
		}
	}
}

func (vd *validation) propertyDefinitions() {
	seen := make(map[string]bool)
	for _, d := range vd.cs.Properties {
		if seen[d.Code] {
			continue
		}
		seen[d.Code] = true
		vd.defined = append(vd.defined, d.Code)
	}

	for _, code := range vd.defined {
		d := vd.cs.PropertyDefinition(code)
		switch {
		case d.Type == "":
			vd.add(d.Line, "MISSING_PROPERTY_TYPE", SeverityError, "Property '%s' missing type definition", code)
		case !slices.Contains(validPropertyTypes, d.Type):
			vd.add(d.Line, "NON_STANDARD_TYPE", SeverityWarning, "Property '%s' has non-standard type: %s", code, d.Type)
		}
		if d.Description == "" {
			vd.add(d.Line, "MISSING_DESCRIPTION", SeverityWarning, "Property '%s' missing description", code)
		}
	}
}

func (vd *validation) conceptDefinitions() {
	first := make(map[string]*Concept)
	for _, c := range vd.cs.Concepts {
		if prev, ok := first[c.Code]; ok {
			vd.add(c.Line, "DUPLICATE_CONCEPT", SeverityError, "Concept '%s' duplicated (first occurrence at line %d)", c.Code, prev.Line)
			continue
		}
		first[c.Code] = c
		vd.concepts = append(vd.concepts, c)
	}

	for _, c := range vd.concepts {
		if c.Display == "" {
			vd.add(c.Line, "MISSING_DISPLAY", SeverityError, "Concept '%s' missing display name", c.Code)
		}
		for _, code := range c.PropertyCodes() {
			if !slices.Contains(vd.defined, code) {
				vd.add(c.Line, "UNDEFINED_PROPERTY_USE", SeverityWarning, "Concept '%s' uses undefined property '%s'", c.Code, code)
			}
		}
	}
}

func (vd *validation) syntax() {
	for i, raw := range vd.lines {
		n := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if quotes := strings.Count(line, `"`) - strings.Count(line, `\"`); quotes%2 != 0 {
			vd.add(n, "SYNTAX_ERROR", SeverityError, "Unmatched quotes in line")
		}

		if m := conceptRegex.FindStringSubmatch(line); m != nil {
			if !validCodeRegex.MatchString(m[1]) {
				vd.add(n, "INVALID_CODE", SeverityError, "Invalid characters in code: %s", m[1])
			}
		}

		if propertyStartRegex.MatchString(line) && !vd.followedByCode(i) {
			vd.add(n, "INCOMPLETE_PROPERTY", SeverityError, "Property definition incomplete")
		}
	}
}

// followedByCode reports whether one of the two lines after index i assigns a
// property code.
func (vd *validation) followedByCode(i int) bool {
	for j := i + 1; j <= i+2 && j < len(vd.lines); j++ {
		if strings.Contains(vd.lines[j], "code =") {
			return true
		}
	}
	return false
}

func (vd *validation) usedProperties() map[string]int {
	used := make(map[string]int)
	for _, c := range vd.concepts {
		for _, code := range c.PropertyCodes() {
			used[code]++
		}
	}
	return used
}

func (vd *validation) consistency() {
	used := vd.usedProperties()
	for _, code := range vd.defined {
		if used[code] == 0 {
			d := vd.cs.PropertyDefinition(code)
			vd.add(d.Line, "UNUSED_PROPERTY", SeverityWarning, "Property '%s' defined but never used", code)
		}
	}

	var undefined []string
	for code := range used {
		if !slices.Contains(vd.defined, code) {
			undefined = append(undefined, code)
		}
	}
	slices.Sort(undefined)
	for _, code := range undefined {
		vd.add(0, "UNDEFINED_PROPERTY", SeverityError, "Property '%s' used but not defined", code)
	}
}

func (vd *validation) statistics() {
	used := vd.usedProperties()
	stats := Statistics{
		Lines:             len(vd.lines),
		Concepts:          len(vd.concepts),
		PropertiesDefined: len(vd.defined),
		Usage:             make(map[string]PropertyUsage, len(vd.defined)),
	}
	for _, n := range used {
		stats.PropertyInstances += n
	}
	for _, code := range vd.defined {
		u := PropertyUsage{Count: used[code]}
		if stats.Concepts > 0 {
			u.Percentage = float64(u.Count) / float64(stats.Concepts) * 100
		}
		stats.Usage[code] = u
	}
	for _, f := range vd.result.Findings {
		if f.Severity == SeverityError {
			stats.Errors++
		} else {
			stats.Warnings++
		}
	}
	vd.result.Stats = stats
}
