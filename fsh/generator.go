package fsh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/SanteonNL/nlk/models/fhir"
	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// Options configure a Generator.
type Options struct {
	Profile       Profile
	Version       string
	Publisher     string
	CanonicalBase string
	// Source is the input file name reported in the header comment.
	Source string
}

// GenerateResult summarises a generated CodeSystem.
type GenerateResult struct {
	Profile  Profile `json:"profile" yaml:"profile"`
	Path     string  `json:"path,omitempty" yaml:"path,omitempty"`
	Rows     int     `json:"rows" yaml:"rows"`
	Total    int     `json:"total" yaml:"total"`
	Active   int     `json:"active" yaml:"active"`
	Retired  int     `json:"retired" yaml:"retired"`
	Concepts int     `json:"concepts" yaml:"concepts"`
	Skipped  int     `json:"skipped" yaml:"skipped"`
}

// Generator renders codebook rows as an FSH CodeSystem.
type Generator struct {
	opts   Options
	layout profileLayout
	log    zerolog.Logger
	now    func() time.Time
}

func NewGenerator(opts Options, log zerolog.Logger) (*Generator, error) {
	layout, ok := layouts[opts.Profile]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, opts.Profile)
	}
	return &Generator{
		opts:   opts,
		layout: layout,
		log:    log.With().Str("profile", string(opts.Profile)).Logger(),
		now:    time.Now,
	}, nil
}

// URL returns the canonical URL of the generated CodeSystem.
func (g *Generator) URL() string {
	return strings.TrimSuffix(g.opts.CanonicalBase, "/") + "/CodeSystem/" + g.layout.id
}

// selectCodes picks and orders the rows for the profile. The basic profile
// keeps the first row of every active code in input order; the others keep
// every row ordered by code.
func (g *Generator) selectCodes(codes []nlk.LabCode, now time.Time) []nlk.LabCode {
	if g.opts.Profile == ProfileBasic {
		seen := make(map[string]bool)
		var out []nlk.LabCode
		for _, c := range codes {
			if !c.IsActive(now) || seen[c.Code] {
				continue
			}
			seen[c.Code] = true
			out = append(out, c)
		}
		return out
	}

	out := slices.Clone(codes)
	slices.SortStableFunc(out, func(a, b nlk.LabCode) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out
}

func (g *Generator) counts(codes []nlk.LabCode, now time.Time) (active, retired int) {
	for _, c := range codes {
		switch c.Status(now) {
		case nlk.StatusActive:
			active++
		case nlk.StatusRetired:
			retired++
		}
	}
	switch g.opts.Profile {
	case ProfileBasic:
		return len(codes), 0
	case ProfileEnhanced:
		return active, len(codes) - active
	default:
		return active, retired
	}
}

func (g *Generator) properties(c nlk.LabCode, now time.Time) []Property {
	switch g.opts.Profile {
	case ProfileEnhanced:
		return enhancedProperties(c, now)
	case ProfileDetailed:
		return detailedProperties(c)
	default:
		return nil
	}
}

// RenderConcept renders one concept block with multi-line property groups.
func RenderConcept(c nlk.LabCode, withDefinition bool, props []Property) (string, error) {
	if c.Code == "" || strings.ContainsAny(c.Code, " \t\r\n\"") {
		return "", fmt.Errorf("%w: invalid code %q", ErrInvalidConcept, c.Code)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "* #%s %s\n", c.Code, Escape(c.DisplayOrCode()))
	if def := strings.TrimSpace(c.Definition); withDefinition && def != "" {
		fmt.Fprintf(&b, "  * ^definition = %s\n", Escape(def))
	}
	for _, p := range props {
		value, err := encodeValue(p.Type, p.Value)
		if err != nil {
			return "", fmt.Errorf("%w: %s property %s", err, c.Code, p.Code)
		}
		fmt.Fprintf(&b, "  * ^property[+]\n    * code = #%s\n    * value%s = %s\n", p.Code, p.Type, value)
	}
	return b.String(), nil
}

// Generate writes the CodeSystem for codes to w. Rows that cannot be
// rendered are logged and skipped; the header counts only rendered concepts.
func (g *Generator) Generate(w io.Writer, codes []nlk.LabCode) (*GenerateResult, error) {
	now := g.now()
	selected := g.selectCodes(codes, now)

	withDefinition := g.opts.Profile != ProfileBasic
	rendered := make([]nlk.LabCode, 0, len(selected))
	blocks := make([]string, 0, len(selected))
	skipped := 0
	for _, c := range selected {
		block, err := RenderConcept(c, withDefinition, g.properties(c, now))
		if err != nil {
			skipped++
			g.log.Warn().Err(err).Str("code", c.Code).Msg("Skipping concept")
			continue
		}
		if g.layout.spaced {
			block += "\n"
		}
		rendered = append(rendered, c)
		blocks = append(blocks, block)
	}

	active, retired := g.counts(rendered, now)
	result := &GenerateResult{
		Profile: g.opts.Profile,
		Rows:    len(codes),
		Total:   len(rendered),
		Active:  active,
		Retired: retired,
		Skipped: skipped,
	}

	bw := bufio.NewWriter(w)
	err := g.layout.header.Execute(bw, headerData{
		Source:     g.opts.Source,
		Generated:  now.Format("2006-01-02 15:04:05"),
		Date:       fhir.NewDate(now).String(),
		ID:         g.layout.id,
		URL:        g.URL(),
		Version:    g.opts.Version,
		Publisher:  g.opts.Publisher,
		Total:      result.Total,
		Active:     active,
		Retired:    retired,
		Properties: g.layout.properties,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render header: %w", err)
	}

	for i, block := range blocks {
		if _, err := bw.WriteString(block); err != nil {
			return nil, fmt.Errorf("failed to write concept %s: %w", rendered[i].Code, err)
		}
		result.Concepts++
		if result.Concepts%500 == 0 {
			g.log.Debug().Int("concepts", result.Concepts).Msg("Wrote concepts")
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write CodeSystem: %w", err)
	}

	g.log.Info().
		Int("concepts", result.Concepts).
		Int("active", result.Active).
		Int("retired", result.Retired).
		Int("skipped", result.Skipped).
		Msg("Generated CodeSystem")
	return result, nil
}

// GenerateFile writes the CodeSystem to path.
func (g *Generator) GenerateFile(path string, codes []nlk.LabCode) (*GenerateResult, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	result, err := g.Generate(f, codes)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close %s: %w", path, err)
	}
	result.Path = path
	return result, nil
}
