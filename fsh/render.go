package fsh

import (
	"fmt"

	"github.com/SanteonNL/nlk/ux"
	"golang.org/x/exp/slices"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxWarningsShown caps the warnings listed by Print.
const maxWarningsShown = 10

// Print writes the validation results.
func (r *ValidationResult) Print(p *ux.Printer) {
	mp := message.NewPrinter(language.English)
	s := r.Stats

	p.Title("FSH CodeSystem Validation Results")
	if r.File != "" {
		p.Println("File: " + r.File)
	}
	p.Println("")
	p.Println(p.Render(ux.Styles.Bold, "File Statistics"))
	p.Println(mp.Sprintf("  Total lines: %d", s.Lines))
	p.Println(mp.Sprintf("  Total concepts: %d", s.Concepts))
	p.Println(mp.Sprintf("  Properties defined: %d", s.PropertiesDefined))
	p.Println(mp.Sprintf("  Property instances: %d", s.PropertyInstances))

	if errs := r.Errors(); len(errs) > 0 {
		p.Println("")
		p.Println(p.Render(ux.Styles.Bold, fmt.Sprintf("Errors (%d)", len(errs))))
		for _, f := range errs {
			p.Println(fmt.Sprintf("  Line %d: [%s] %s", f.Line, f.Type, f.Message))
		}
	}

	if warns := r.Warnings(); len(warns) > 0 {
		p.Println("")
		p.Println(p.Render(ux.Styles.Bold, fmt.Sprintf("Warnings (%d)", len(warns))))
		for i, f := range warns {
			if i == maxWarningsShown {
				p.Println(fmt.Sprintf("  ... and %d more warnings", len(warns)-maxWarningsShown))
				break
			}
			p.Println(fmt.Sprintf("  Line %d: %s", f.Line, f.Message))
		}
	}

	if len(s.Usage) > 0 {
		codes := make([]string, 0, len(s.Usage))
		for code := range s.Usage {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		rows := make([][]string, 0, len(codes))
		for _, code := range codes {
			u := s.Usage[code]
			rows = append(rows, []string{code, mp.Sprintf("%d", u.Count), fmt.Sprintf("%.1f%%", u.Percentage)})
		}
		p.Println("")
		p.Println(p.Render(ux.Styles.Bold, "Property Usage"))
		p.Println(ux.Table([]string{"Property", "Concepts", "Share"}, rows))
	}

	p.Println("")
	if r.Passed() {
		p.Success("FSH CodeSystem validation PASSED")
	} else {
		p.Error(fmt.Sprintf("FSH CodeSystem validation FAILED (%d errors)", s.Errors))
	}
	if s.Warnings > 0 {
		p.Warning(fmt.Sprintf("%d warnings found (review recommended)", s.Warnings))
	}
}

// maxCodesShown caps the missing and extra codes listed by Print.
const maxCodesShown = 20

func printCodes(p *ux.Printer, label string, codes []string) {
	p.Error(fmt.Sprintf("%s: %d codes", label, len(codes)))
	for i, code := range codes {
		if i == maxCodesShown {
			p.Println(fmt.Sprintf("  ... and %d more", len(codes)-maxCodesShown))
			return
		}
		p.Println("  - " + code)
	}
}

// Print writes the comparison results.
func (c *Comparison) Print(p *ux.Printer) {
	p.Title(fmt.Sprintf("Comparing %s codes between CSV and FSH", c.Domain))
	p.Println(fmt.Sprintf("CSV codes: %d", c.CSVCodes))
	p.Println(fmt.Sprintf("FSH codes: %d", c.FSHCodes))

	if len(c.Missing) > 0 {
		printCodes(p, "Missing in FSH", c.Missing)
	} else {
		p.Success("All CSV codes present in FSH")
	}
	if len(c.Extra) > 0 {
		printCodes(p, "Extra in FSH", c.Extra)
	} else {
		p.Success("No extra codes in FSH")
	}

	if len(c.Mismatches) > 0 {
		rows := make([][]string, 0, len(c.Mismatches))
		for _, m := range c.Mismatches {
			rows = append(rows, []string{m.Code, m.Field, m.CSV, m.FSH})
		}
		p.Println(ux.Table([]string{"Code", "Field", "CSV", "FSH"}, rows))
	}

	p.Println("")
	if c.Perfect() {
		p.Success(fmt.Sprintf("Perfect match: %d codes compared", c.Compared))
	} else {
		p.Warning(fmt.Sprintf("%d codes compared, %d mismatches", c.Compared, len(c.Mismatches)))
	}
}

// Print writes the fix statistics.
func (s FixStats) Print(p *ux.Printer) {
	mp := message.NewPrinter(language.English)
	p.Println(mp.Sprintf("  Original multi-line patterns: %d", s.Original))
	p.Println(mp.Sprintf("  Remaining patterns: %d", s.Remaining))
	p.Println(mp.Sprintf("  Fixed patterns: %d", s.Fixed))
	if s.Remaining == 0 {
		p.Success("All property syntax issues fixed")
	} else {
		p.Warning(fmt.Sprintf("%d patterns still need fixing", s.Remaining))
	}
}

// Print writes the extraction statistics.
func (r *ExtractResult) Print(p *ux.Printer) {
	mp := message.NewPrinter(language.English)
	p.Println(mp.Sprintf("  Code blocks: %d", r.Blocks))
	p.Println(mp.Sprintf("  Extracted codes: %d (%d active, %d retired)", r.Matched, r.Active, r.Retired))
	p.Println(mp.Sprintf("  Size reduced from %d to %d characters", r.InputSize, r.OutputSize))
}

// Print writes the generation statistics.
func (r *GenerateResult) Print(p *ux.Printer) {
	mp := message.NewPrinter(language.English)
	p.Println(mp.Sprintf("  Profile: %s", r.Profile))
	p.Println(mp.Sprintf("  Rows read: %d", r.Rows))
	p.Println(mp.Sprintf("  Concepts written: %d", r.Concepts))
	p.Println(mp.Sprintf("  Active: %d, retired: %d", r.Active, r.Retired))
	if r.Skipped > 0 {
		p.Warning(fmt.Sprintf("%d rows skipped", r.Skipped))
	}
}
