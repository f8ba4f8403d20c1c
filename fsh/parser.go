package fsh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const maxLineSize = 4 * 1024 * 1024

// Parser reads CodeSystem files line by line. The only state carried between
// lines is the current concept, the current property and the current header
// property definition.
type Parser struct {
	log zerolog.Logger
}

func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log}
}

// ParseString parses FSH source held in memory.
func ParseString(src string) (*CodeSystem, error) {
	return NewParser(zerolog.Nop()).Parse(strings.NewReader(src))
}

// ParseFile parses the CodeSystem in path.
func (p *Parser) ParseFile(path string) (*CodeSystem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	cs, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cs, nil
}

type parseState struct {
	cs       *CodeSystem
	concept  *Concept
	property *Property
	def      int
}

// Parse reads a CodeSystem. Lines that match no known form are ignored.
func (p *Parser) Parse(r io.Reader) (*CodeSystem, error) {
	st := &parseState{
		cs:  &CodeSystem{Metadata: make(map[string]string)},
		def: -1,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		st.line(n, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	st.cs.Lines = n

	p.log.Debug().
		Int("lines", n).
		Int("concepts", len(st.cs.Concepts)).
		Int("properties", len(st.cs.Properties)).
		Msg("Parsed CodeSystem")
	return st.cs, nil
}

func (st *parseState) line(n int, line string) {
	if line == "" || strings.HasPrefix(line, "//") {
		return
	}

	if m := conceptRegex.FindStringSubmatch(line); m != nil {
		st.concept = &Concept{Code: m[1], Display: Unescape(m[2]), Line: n}
		st.cs.Concepts = append(st.cs.Concepts, st.concept)
		st.property = nil
		return
	}

	if st.concept == nil {
		st.header(n, line)
		return
	}
	st.conceptLine(n, line)
}

func (st *parseState) header(n int, line string) {
	cs := st.cs
	if m := keywordRegex.FindStringSubmatch(line); m != nil {
		value := unquote(m[2])
		switch m[1] {
		case "CodeSystem":
			cs.Name = value
		case "Id":
			cs.ID = value
		case "Title":
			cs.Title = value
		case "Description":
			cs.Description = value
		}
		return
	}
	if m := inlineCodeRegex.FindStringSubmatch(line); m != nil {
		cs.Properties = append(cs.Properties, PropertyDefinition{Code: m[1], Line: n})
		st.def = len(cs.Properties) - 1
		return
	}
	if m := defTypeRegex.FindStringSubmatch(line); m != nil {
		if st.def >= 0 {
			cs.Properties[st.def].Type = m[1]
		}
		return
	}
	if m := defDescRegex.FindStringSubmatch(line); m != nil {
		if st.def >= 0 {
			cs.Properties[st.def].Description = Unescape(m[1])
		}
		return
	}
	if m := metadataRegex.FindStringSubmatch(line); m != nil {
		cs.Metadata[m[1]] = unquote(m[2])
	}
}

func (st *parseState) conceptLine(n int, line string) {
	if m := definitionRegex.FindStringSubmatch(line); m != nil {
		st.concept.Definition = Unescape(m[1])
		return
	}
	if propertyStartRegex.MatchString(line) {
		st.property = &Property{Line: n}
		return
	}
	if m := propertyCodeRegex.FindStringSubmatch(line); m != nil {
		if st.property != nil {
			st.property.Code = m[1]
		}
		return
	}
	if m := inlineCodeRegex.FindStringSubmatch(line); m != nil {
		st.property = &Property{Code: m[1], Line: n}
		return
	}

	m := propertyValueRegex.FindStringSubmatch(line)
	if m == nil {
		m = inlineValueRegex.FindStringSubmatch(line)
	}
	if m == nil || st.property == nil {
		return
	}
	t := ValueType(m[1])
	st.property.Type = t
	st.property.Value = decodeValue(t, m[2])
	if st.property.Code != "" {
		st.concept.Properties = append(st.concept.Properties, *st.property)
	}
	st.property = nil
}
