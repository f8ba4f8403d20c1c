package csvquality

import (
	"fmt"
	"strings"

	"github.com/SanteonNL/nlk/ux"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// IssueTitle turns an issue type such as "exact_duplicates" into "Exact Duplicates".
func IssueTitle(issueType string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(issueType, "_", " "))
}

// Recommendation returns the closing advice line of the text report.
func (r *Report) Recommendation() string {
	switch {
	case r.HasCritical():
		return "🔴 CRITICAL: Address critical issues before proceeding with data analysis."
	case len(r.BySeverity(SeverityWarning)) > 0:
		return "🟡 WARNING: Consider fixing warning issues to improve data quality."
	default:
		return "✅ GOOD: No critical issues found. Data appears to be in good condition."
	}
}

func sortedSummary(r *Report) ([]string, map[string]int) {
	summary := r.Summary()
	types := make([]string, 0, len(summary))
	for t := range summary {
		types = append(types, t)
	}
	slices.Sort(types)
	return types, summary
}

// Text renders the plain-text validation report.
func (r *Report) Text() string {
	p := message.NewPrinter(language.English)
	rule := strings.Repeat("=", 80)
	sub := strings.Repeat("-", 40)

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\n")
	}

	line(rule)
	line("CSV DATA QUALITY VALIDATION REPORT")
	line(rule)
	line("File: " + r.File)
	line("Generated: " + r.GeneratedAt.Format("2006-01-02 15:04:05"))
	line("Encoding: " + r.Encoding)
	line("")

	line("OVERVIEW")
	line(sub)
	line(p.Sprintf("Total Rows: %d", r.TotalRows))
	line(p.Sprintf("Total Columns: %d", r.TotalColumns))
	line(p.Sprintf("Total Issues Found: %d", len(r.Issues)))
	line("")

	if types, summary := sortedSummary(r); len(types) > 0 {
		line("ISSUE SUMMARY")
		line(sub)
		for _, t := range types {
			line(p.Sprintf("%s: %d", IssueTitle(t), summary[t]))
		}
		line("")
	}

	for _, severity := range Severities {
		issues := r.BySeverity(severity)
		if len(issues) == 0 {
			continue
		}
		line(strings.ToUpper(string(severity)) + " ISSUES")
		line(sub)
		for _, issue := range issues {
			line("• " + issue.Description)
			line("  Location: " + issue.Location)
			if issue.SuggestedFix != "" {
				line("  Suggested Fix: " + issue.SuggestedFix)
			}
			line("")
		}
	}

	line("RECOMMENDATIONS")
	line(sub)
	line(r.Recommendation())
	line("")
	b.WriteString("To clean the data automatically, use the --clean option.")
	return b.String()
}

// Print writes a short styled summary of the report.
func (r *Report) Print(p *ux.Printer) {
	mp := message.NewPrinter(language.English)
	p.Title("CSV quality: " + r.File)
	p.Println(mp.Sprintf("%d rows, %d columns, encoding %s", r.TotalRows, r.TotalColumns, r.Encoding))

	if types, summary := sortedSummary(r); len(types) > 0 {
		rows := make([][]string, len(types))
		for i, t := range types {
			rows[i] = []string{IssueTitle(t), fmt.Sprint(summary[t])}
		}
		p.Println(ux.Table([]string{"Issue", "Count"}, rows))
	}

	critical := len(r.BySeverity(SeverityCritical))
	warnings := len(r.BySeverity(SeverityWarning))
	switch {
	case critical > 0:
		p.Error(fmt.Sprintf("%d critical issues", critical))
	case warnings > 0:
		p.Warning(fmt.Sprintf("%d warnings", warnings))
	default:
		p.Success("No critical issues found")
	}
}
