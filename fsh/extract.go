package fsh

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/SanteonNL/nlk/models/fhir"
	"github.com/rs/zerolog"
)

// ExtractOptions select the concepts of a subset and name the resulting
// CodeSystem.
type ExtractOptions struct {
	// Properties are tried in order; a concept matches when any of them
	// equals Value.
	Properties  []string
	Value       string
	Name        string
	ID          string
	Title       string
	Description string
}

// DefaultExtractOptions extract the medical genetics domain.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Properties:  []string{"primaryDomain", "secondaryDomain"},
		Value:       "Medisinsk genetikk",
		Name:        "NorskLaboratoriekodeverkMedicalGenetics",
		ID:          "norsk-laboratoriekodeverk-medical-genetics",
		Title:       "Norsk Laboratoriekodeverk - Medical Genetics",
		Description: "Norwegian Laboratory Codebook - Medical Genetics domain subset with complete metadata properties",
	}
}

// ExtractResult summarises an extraction.
type ExtractResult struct {
	Blocks     int `json:"blocks" yaml:"blocks"`
	Matched    int `json:"matched" yaml:"matched"`
	Active     int `json:"active" yaml:"active"`
	Retired    int `json:"retired" yaml:"retired"`
	InputSize  int `json:"input_size" yaml:"input_size"`
	OutputSize int `json:"output_size" yaml:"output_size"`
}

// Extractor cuts a subset of concepts out of a CodeSystem file.
type Extractor struct {
	opts ExtractOptions
	log  zerolog.Logger
	now  func() time.Time
}

func NewExtractor(opts ExtractOptions, log zerolog.Logger) *Extractor {
	return &Extractor{opts: opts, log: log, now: time.Now}
}

// retired reports whether a concept is no longer in use, either by its status
// property or by an expiry date in the past.
func retired(c *Concept, now time.Time) bool {
	if status, ok := c.Property("status"); ok {
		return status == "retired"
	}
	for _, code := range []string{"validTo", "expirationDate"} {
		v, ok := c.Property(code)
		if !ok {
			continue
		}
		if dt, err := fhir.ParseDateTime(v); err == nil && dt.Before(now) {
			return true
		}
	}
	return false
}

func (e *Extractor) matches(c *Concept) bool {
	for _, code := range e.opts.Properties {
		if v, ok := c.Property(code); ok && v == e.opts.Value {
			return true
		}
	}
	return false
}

// Extract returns the header followed by the blocks of all concepts with one
// of the configured properties equal to the value. Blocks are kept verbatim.
func (e *Extractor) Extract(content string) (string, *ExtractResult, error) {
	cs, err := ParseString(content)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse CodeSystem: %w", err)
	}
	if len(cs.Concepts) == 0 {
		return "", nil, ErrHeaderNotFound
	}

	lines := strings.Split(content, "\n")
	now := e.now()
	result := &ExtractResult{Blocks: len(cs.Concepts), InputSize: len(content)}

	var blocks []string
	for i, c := range cs.Concepts {
		if !e.matches(c) {
			continue
		}
		end := len(lines)
		if i+1 < len(cs.Concepts) {
			end = cs.Concepts[i+1].Line - 1
		}
		blocks = append(blocks, strings.Join(lines[c.Line-1:end], "\n"))
		if retired(c, now) {
			result.Retired++
		} else {
			result.Active++
		}
	}
	result.Matched = len(blocks)

	e.log.Info().
		Int("blocks", result.Blocks).
		Int("matched", result.Matched).
		Strs("properties", e.opts.Properties).
		Str("value", e.opts.Value).
		Msg("Selected concepts")

	if len(blocks) == 0 {
		return "", result, fmt.Errorf("%w: %s = %q", ErrNoConcepts, strings.Join(e.opts.Properties, "|"), e.opts.Value)
	}

	header := e.rewriteHeader(lines[:cs.Concepts[0].Line-1], result)
	body := strings.Join(blocks, "\n")
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	out := strings.Join(header, "\n") + "\n" + body
	result.OutputSize = len(out)
	return out, result, nil
}

func (e *Extractor) rewriteHeader(lines []string, result *ExtractResult) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = e.rewriteHeaderLine(line, result)
	}
	return out
}

func (e *Extractor) rewriteHeaderLine(line string, result *ExtractResult) string {
	trimmed := strings.TrimSpace(line)

	if m := countCommentRegex.FindStringSubmatch(trimmed); m != nil {
		n := result.Matched
		switch m[2] {
		case "Active":
			n = result.Active
		case "Retired":
			n = result.Retired
		}
		return m[1] + strconv.Itoa(n)
	}
	if m := urlRegex.FindStringSubmatch(trimmed); m != nil {
		return m[1] + m[2] + e.opts.ID + m[3]
	}
	if strings.HasPrefix(trimmed, "* ^count = ") {
		return "* ^count = " + strconv.Itoa(result.Matched)
	}

	m := keywordRegex.FindStringSubmatch(trimmed)
	if m == nil {
		return line
	}
	switch m[1] {
	case "CodeSystem":
		return "CodeSystem: " + e.opts.Name
	case "Id":
		return "Id: " + e.opts.ID
	case "Title":
		return "Title: " + Escape(e.opts.Title)
	default:
		return "Description: " + Escape(e.opts.Description)
	}
}

// ExtractFile reads a CodeSystem from in and writes the subset to out.
func (e *Extractor) ExtractFile(in, out string) (*ExtractResult, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", in, err)
	}
	subset, result, err := e.Extract(string(data))
	if err != nil {
		return result, err
	}
	if err := os.WriteFile(out, []byte(subset), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", out, err)
	}
	return result, nil
}
