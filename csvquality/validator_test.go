package csvquality

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messyCSV = "kode,navn, enhet ,tom\n" +
	"A1,Hemoglobin ,g/L,\n" +
	"A1,Hemoglobin ,g/L,\n" +
	"B2,natrium,mmol/L,\n" +
	",,,\n" +
	"C3,Natrium,mmol/L,NULL\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codes.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func issue(t *testing.T, r *Report, issueType string) Issue {
	t.Helper()
	for _, i := range r.Issues {
		if i.Type == issueType {
			return i
		}
	}
	t.Fatalf("no %s issue in %v", issueType, r.Issues)
	return Issue{}
}

func run(t *testing.T, content, encoding string) (*Validator, *Report) {
	t.Helper()
	v := NewValidator(writeCSV(t, content), encoding, zerolog.Nop())
	r, err := v.Run()
	require.NoError(t, err)
	return v, r
}

func TestRunFindsIssues(t *testing.T) {
	_, r := run(t, messyCSV, "utf-8")

	assert.Equal(t, 5, r.TotalRows)
	assert.Equal(t, 4, r.TotalColumns)
	assert.Equal(t, map[string]int{
		"exact_duplicates":            1,
		"duplicate_keys":              1,
		"empty_rows":                  1,
		"empty_columns":               1,
		"whitespace_leading_trailing": 2,
		"column_name_whitespace":      1,
		"inconsistent_capitalization": 1,
		"potential_typos":             1,
	}, r.Summary())

	assert.Equal(t, "Rows: [1]", issue(t, r, "exact_duplicates").Location)
	assert.Equal(t, "Found 1 duplicate values in key column 'kode'", issue(t, r, "duplicate_keys").Description)
	assert.Equal(t, "Rows: [3]", issue(t, r, "empty_rows").Location)
	assert.Equal(t, "Columns: ['tom']", issue(t, r, "empty_columns").Location)

	ws := issue(t, r, "whitespace_leading_trailing")
	assert.Equal(t, SeverityWarning, ws.Severity)
	assert.Equal(t, "Column: navn, Rows: [0, 1]", ws.Location)

	assert.Equal(t, "Trim whitespace: 'enhet'", issue(t, r, "column_name_whitespace").SuggestedFix)
	assert.Equal(t, [][2]string{{"Natrium", "natrium"}}, issue(t, r, "potential_typos").CurrentValue)

	assert.Equal(t, 1, r.DuplicateRowsFound)
	assert.Equal(t, 1, r.EmptyRowsFound)
	assert.Equal(t, 2, r.WhitespaceIssuesFound)
	assert.Len(t, r.BySeverity(SeverityWarning), 4)
	assert.Equal(t, 0, r.ExitCode())
}

func TestRunDetectsFallbackEncoding(t *testing.T) {
	v, r := run(t, "kode,navn\nA,Bl\xe5\nB,Gr\xf8nn\n", "utf-8")

	assert.Equal(t, "latin1", v.Encoding())
	i := issue(t, r, "encoding_detection")
	assert.Equal(t, SeverityWarning, i.Severity)
	assert.Equal(t, "File encoding detected as latin1, not utf-8", i.Description)
	assert.Equal(t, "file_level", i.Location)
	assert.Equal(t, 1, r.EncodingIssuesFound)
}

func TestRunUnparseableFileIsCritical(t *testing.T) {
	_, r := run(t, "a,b\n1,2,3\n", "utf-8")

	require.Len(t, r.Issues, 1)
	assert.Equal(t, "file_loading_error", r.Issues[0].Type)
	assert.Equal(t, SeverityCritical, r.Issues[0].Severity)
	assert.Equal(t, 1, r.ExitCode())
}

func TestRunMissingFile(t *testing.T) {
	v := NewValidator(filepath.Join(t.TempDir(), "missing.csv"), "", zerolog.Nop())
	_, err := v.Run()
	assert.Error(t, err)
}

func TestDataTypeChecks(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,mengde,dato,merknad\n")
	amounts := []string{`"1,234"`, "5", "6.5", "-7", "8", "9"}
	dates := []string{"2020-01-01", "2020-02-01", "2020-03-01", "2020-04-01", "2020-05-01", "2020-06-01"}
	for i := range amounts {
		b.WriteString(string(rune('a'+i)) + "," + amounts[i] + "," + dates[i] + ",x\n")
	}
	_, r := run(t, b.String(), "utf-8")

	num := issue(t, r, "potential_numeric_column")
	assert.Equal(t, "Column: mengde", num.Location)
	assert.Equal(t, 6, num.Count)

	date := issue(t, r, "potential_date_column")
	assert.Equal(t, "Column: dato", date.Location)
	assert.Equal(t, 6, r.DateFormatIssues)
}

func TestWhitespaceKinds(t *testing.T) {
	_, r := run(t, "kode,navn\nA,a\u00a0b\nB,\"a\tb\"\nC,\"a\nb\"\nD,a  b\n", "utf-8")

	assert.Equal(t, SeverityInfo, issue(t, r, "whitespace_non_breaking_space").Severity)
	assert.Equal(t, "Column: navn, Rows: [1]", issue(t, r, "whitespace_tabs").Location)
	assert.Equal(t, "Column: navn, Rows: [2]", issue(t, r, "whitespace_newlines").Location)
	assert.Equal(t, SeverityWarning, issue(t, r, "whitespace_multiple_spaces").Severity)
}

func TestColumnNameChecks(t *testing.T) {
	_, r := run(t, "kode,,kode\n1,2,3\n", "utf-8")

	unnamed := issue(t, r, "unnamed_column")
	assert.Equal(t, "Column index 1", unnamed.Location)
	assert.Equal(t, "Unnamed: 1", unnamed.CurrentValue)
	assert.Equal(t, 2, r.Summary()["duplicate_column_names"])
}

func TestClean(t *testing.T) {
	v, _ := run(t, messyCSV, "utf-8")

	cleaned, err := v.Clean()
	require.NoError(t, err)
	assert.Equal(t, []string{"kode", "navn", "enhet", "tom"}, cleaned.Header)
	assert.Equal(t, [][]string{
		{"A1", "Hemoglobin", "g/L", ""},
		{"B2", "natrium", "mmol/L", ""},
		{"C3", "Natrium", "mmol/L", ""},
	}, cleaned.Rows)
	assert.Equal(t, 3, v.Report().CleanedRows)
}

func TestCleanWithoutData(t *testing.T) {
	v := NewValidator("nothing.csv", "", zerolog.Nop())
	_, err := v.Clean()
	assert.Error(t, err)
}

func TestCleanCell(t *testing.T) {
	assert.Equal(t, "a b c", CleanCell(" a  b\tc "))
	assert.Equal(t, "x y", CleanCell("x    y"))
	assert.Equal(t, "", CleanCell("NULL"))
	assert.Equal(t, "", CleanCell(" nan "))
}

func TestReportText(t *testing.T) {
	r := &Report{
		File:         "codes.csv",
		Encoding:     "utf-8",
		GeneratedAt:  time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		TotalRows:    12345,
		TotalColumns: 3,
	}
	r.AddIssue(Issue{Type: "exact_duplicates", Severity: SeverityWarning, Description: "Found 2 exact duplicate rows", Location: "Rows: [3, 4]", SuggestedFix: "Remove duplicate rows", Count: 2})
	r.AddIssue(Issue{Type: "empty_columns", Severity: SeverityInfo, Description: "Found 1 completely empty columns", Location: "Columns: ['x']"})

	text := r.Text()
	assert.True(t, strings.HasPrefix(text, strings.Repeat("=", 80)+"\nCSV DATA QUALITY VALIDATION REPORT\n"))
	assert.Contains(t, text, "Generated: 2025-03-04 05:06:07\n")
	assert.Contains(t, text, "Total Rows: 12,345\n")
	assert.Contains(t, text, "Total Issues Found: 2\n")
	assert.Contains(t, text, "ISSUE SUMMARY\n"+strings.Repeat("-", 40)+"\nEmpty Columns: 1\nExact Duplicates: 2\n")
	assert.Contains(t, text, "WARNING ISSUES\n")
	assert.Contains(t, text, "• Found 2 exact duplicate rows\n  Location: Rows: [3, 4]\n  Suggested Fix: Remove duplicate rows\n")
	assert.NotContains(t, text, "CRITICAL ISSUES")
	assert.Contains(t, text, "🟡 WARNING")
	assert.True(t, strings.HasSuffix(text, "To clean the data automatically, use the --clean option."))
}

func TestRecommendation(t *testing.T) {
	r := &Report{}
	assert.Contains(t, r.Recommendation(), "GOOD")
	r.AddIssue(Issue{Type: "file_loading_error", Severity: SeverityCritical})
	assert.Contains(t, r.Recommendation(), "CRITICAL")
	assert.Equal(t, 1, r.Issues[0].Count)
}

func TestIssueTitle(t *testing.T) {
	assert.Equal(t, "Whitespace Non Breaking Space", IssueTitle("whitespace_non_breaking_space"))
}
