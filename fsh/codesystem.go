// Package fsh reads, writes and checks FHIR Shorthand CodeSystem files for the
// laboratory codebook.
package fsh

import (
	"errors"
	"strings"
)

var (
	ErrNoConcepts      = errors.New("no matching concepts")
	ErrHeaderNotFound  = errors.New("no concept definitions found after the header")
	ErrUnknownProfile  = errors.New("unknown generation profile")
	ErrInvalidConcept  = errors.New("concept cannot be rendered")
	ErrUnsupportedType = errors.New("unsupported property value type")
)

// ValueType is the suffix of a concept property value element, as in valueString.
type ValueType string

const (
	TypeString   ValueType = "String"
	TypeCode     ValueType = "Code"
	TypeDateTime ValueType = "DateTime"
	TypeInteger  ValueType = "Integer"
	TypeBoolean  ValueType = "Boolean"
	TypeDecimal  ValueType = "Decimal"
)

// DefinitionType returns the CodeSystem.property.type code for a value type.
func (t ValueType) DefinitionType() string {
	switch t {
	case TypeDateTime:
		return "dateTime"
	default:
		return strings.ToLower(string(t))
	}
}

// PropertyDefinition is a property declared in the CodeSystem header.
type PropertyDefinition struct {
	Code        string `json:"code" yaml:"code"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Line        int    `json:"line" yaml:"line"`
}

// Property is one property value of a concept. Value holds the decoded value:
// strings are unescaped and codes carry no leading '#'.
type Property struct {
	Code  string    `json:"code" yaml:"code"`
	Type  ValueType `json:"type" yaml:"type"`
	Value string    `json:"value" yaml:"value"`
	Line  int       `json:"line" yaml:"line"`
}

// Concept is a single `* #CODE "display"` block.
type Concept struct {
	Code       string     `json:"code" yaml:"code"`
	Display    string     `json:"display" yaml:"display"`
	Definition string     `json:"definition,omitempty" yaml:"definition,omitempty"`
	Line       int        `json:"line" yaml:"line"`
	Properties []Property `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Property returns the first value of the named property.
func (c *Concept) Property(code string) (string, bool) {
	for _, p := range c.Properties {
		if p.Code == code {
			return p.Value, true
		}
	}
	return "", false
}

// PropertyCodes returns the distinct property codes used by the concept, in
// order of first use.
func (c *Concept) PropertyCodes() []string {
	seen := make(map[string]bool, len(c.Properties))
	var codes []string
	for _, p := range c.Properties {
		if !seen[p.Code] {
			seen[p.Code] = true
			codes = append(codes, p.Code)
		}
	}
	return codes
}

// CodeSystem is a parsed FSH CodeSystem definition.
type CodeSystem struct {
	Name        string `json:"name" yaml:"name"`
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	// Metadata holds the header caret assignments keyed by path, e.g. "url"
	// or "contact.name". String values are unquoted.
	Metadata   map[string]string    `json:"metadata" yaml:"metadata"`
	Properties []PropertyDefinition `json:"properties" yaml:"properties"`
	Concepts   []*Concept           `json:"concepts" yaml:"concepts"`
	Lines      int                  `json:"lines" yaml:"lines"`
}

// Concept returns the first concept with the given code.
func (cs *CodeSystem) Concept(code string) *Concept {
	for _, c := range cs.Concepts {
		if c.Code == code {
			return c
		}
	}
	return nil
}

// PropertyDefinition returns the last header definition of a property code.
func (cs *CodeSystem) PropertyDefinition(code string) *PropertyDefinition {
	for i := len(cs.Properties) - 1; i >= 0; i-- {
		if cs.Properties[i].Code == code {
			return &cs.Properties[i]
		}
	}
	return nil
}

// Escape renders text as an FSH string literal. Surrounding whitespace is
// trimmed and backslashes, quotes and line breaks are escaped.
func Escape(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return `""`
	}
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"`, `\"`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return `"` + text + `"`
}

// Unescape reverses Escape on a literal body without its quotes.
func Unescape(body string) string {
	if !strings.Contains(body, `\`) {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

// unquote strips the quotes of a single or triple quoted literal. Other
// values are returned trimmed.
func unquote(raw string) string {
	raw = strings.TrimSpace(raw)
	switch {
	case len(raw) >= 6 && strings.HasPrefix(raw, `"""`) && strings.HasSuffix(raw, `"""`):
		return raw[3 : len(raw)-3]
	case len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`):
		return Unescape(raw[1 : len(raw)-1])
	default:
		return raw
	}
}

// decodeValue turns the right-hand side of a value assignment into its value.
func decodeValue(t ValueType, raw string) string {
	raw = strings.TrimSpace(raw)
	switch t {
	case TypeCode:
		if i := strings.IndexAny(raw, " \t"); i > 0 {
			raw = raw[:i]
		}
		return strings.TrimPrefix(raw, "#")
	default:
		return unquote(raw)
	}
}

// encodeValue renders a property value as the right-hand side of an assignment.
func encodeValue(t ValueType, value string) (string, error) {
	switch t {
	case TypeString:
		return Escape(value), nil
	case TypeDateTime:
		return `"` + value + `"`, nil
	case TypeCode:
		return "#" + value, nil
	case TypeInteger, TypeBoolean, TypeDecimal:
		return value, nil
	default:
		return "", ErrUnsupportedType
	}
}
