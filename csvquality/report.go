package csvquality

import (
	"time"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Severities lists the severities from most to least serious.
var Severities = []Severity{SeverityCritical, SeverityWarning, SeverityInfo}

// Issue is a single data quality finding.
type Issue struct {
	Type         string      `json:"issue_type" yaml:"issue_type"`
	Severity     Severity    `json:"severity" yaml:"severity"`
	Description  string      `json:"description" yaml:"description"`
	Location     string      `json:"location" yaml:"location"`
	CurrentValue interface{} `json:"current_value" yaml:"current_value"`
	SuggestedFix string      `json:"suggested_fix,omitempty" yaml:"suggested_fix,omitempty"`
	Count        int         `json:"count" yaml:"count"`
}

// Report collects the issues and counters of one validation run.
type Report struct {
	File                  string    `json:"file" yaml:"file"`
	Encoding              string    `json:"encoding" yaml:"encoding"`
	GeneratedAt           time.Time `json:"generated_at" yaml:"generated_at"`
	TotalRows             int       `json:"total_rows" yaml:"total_rows"`
	TotalColumns          int       `json:"total_columns" yaml:"total_columns"`
	Issues                []Issue   `json:"issues" yaml:"issues"`
	CleanedRows           int       `json:"cleaned_rows" yaml:"cleaned_rows"`
	DuplicateRowsFound    int       `json:"duplicate_rows_found" yaml:"duplicate_rows_found"`
	EmptyRowsFound        int       `json:"empty_rows_found" yaml:"empty_rows_found"`
	WhitespaceIssuesFound int       `json:"whitespace_issues_found" yaml:"whitespace_issues_found"`
	EncodingIssuesFound   int       `json:"encoding_issues_found" yaml:"encoding_issues_found"`
	DateFormatIssues      int       `json:"date_format_issues" yaml:"date_format_issues"`
}

// AddIssue appends an issue. A zero count is recorded as 1.
func (r *Report) AddIssue(issue Issue) {
	if issue.Count == 0 {
		issue.Count = 1
	}
	r.Issues = append(r.Issues, issue)
}

// BySeverity returns the issues of one severity, in the order they were found.
func (r *Report) BySeverity(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

// Summary sums the issue counts per issue type.
func (r *Report) Summary() map[string]int {
	summary := make(map[string]int)
	for _, issue := range r.Issues {
		summary[issue.Type] += issue.Count
	}
	return summary
}

// HasCritical reports whether any critical issue was found.
func (r *Report) HasCritical() bool {
	return len(r.BySeverity(SeverityCritical)) > 0
}

// ExitCode is 1 when critical issues were found and 0 otherwise.
func (r *Report) ExitCode() int {
	if r.HasCritical() {
		return 1
	}
	return 0
}
