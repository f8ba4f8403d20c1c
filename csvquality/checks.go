package csvquality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/SanteonNL/nlk/util"
	"golang.org/x/exp/slices"
)

// space matches the characters treated as whitespace, including the Unicode
// separators that a plain \s does not cover.
const space = `[\s\v\x{1c}-\x{1f}\x{85}\p{Z}]`

type whitespacePattern struct {
	name     string
	severity Severity
	re       *regexp.Regexp
}

var whitespacePatterns = []whitespacePattern{
	{"leading_trailing", SeverityWarning, regexp.MustCompile(`^` + space + `+|` + space + `+$`)},
	{"multiple_spaces", SeverityWarning, regexp.MustCompile(space + `{2,}`)},
	{"tabs", SeverityInfo, regexp.MustCompile(`\t`)},
	{"newlines", SeverityInfo, regexp.MustCompile(`[\n\r]`)},
	{"non_breaking_space", SeverityInfo, regexp.MustCompile(`\x{00a0}`)},
}

var (
	numericPattern = regexp.MustCompile(`^-?(\d{1,3}(,\d{3})*|\d+)(\.\d+)?$`)
	datePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),   // YYYY-MM-DD
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),   // MM/DD/YYYY
		regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`), // DD.MM.YYYY
	}
)

const (
	maxDuplicateRowsShown  = 10
	maxWhitespaceRowsShown = 5
	typoColumnMaxDistinct  = 50
	typoExamples           = 3
)

// nullKey stands in for a missing cell when rows or keys are compared, so
// that missing values compare equal to each other.
const nullKey = "\x00<null>"

func cellKey(cell string) string {
	if IsNull(cell) {
		return nullKey
	}
	return cell
}

func (v *Validator) columnAllNull(col int) bool {
	return len(v.nonNull(col)) == 0
}

func (v *Validator) nonNull(col int) []string {
	var out []string
	for _, cell := range v.table.Column(col) {
		if !IsNull(cell) {
			out = append(out, cell)
		}
	}
	return out
}

func rowLocation(rows []int, max int) string {
	return "Rows: " + util.FormatIndices(rows, max)
}

// duplicateRows returns the positions of rows equal to an earlier row.
func duplicateRows(rows [][]string) []int {
	seen := make(map[string]struct{}, len(rows))
	var dups []int
	for i, row := range rows {
		keys := make([]string, len(row))
		for j, cell := range row {
			keys[j] = cellKey(cell)
		}
		key := strings.Join(keys, "\x1f")
		if _, ok := seen[key]; ok {
			dups = append(dups, i)
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func (v *Validator) checkDuplicates() {
	if dups := duplicateRows(v.table.Rows); len(dups) > 0 {
		v.report.DuplicateRowsFound = len(dups)
		v.report.AddIssue(Issue{
			Type:         "exact_duplicates",
			Severity:     SeverityWarning,
			Description:  fmt.Sprintf("Found %d exact duplicate rows", len(dups)),
			Location:     rowLocation(dups, maxDuplicateRowsShown),
			CurrentValue: len(dups),
			SuggestedFix: "Remove duplicate rows",
			Count:        len(dups),
		})
	}

	// The first column is taken as the key.
	if v.table.Ncol() < 2 || v.columnAllNull(0) {
		return
	}
	key := v.table.Header[0]
	seen := make(map[string]struct{})
	var dups []int
	for i, row := range v.table.Rows {
		k := cellKey(row[0])
		if _, ok := seen[k]; ok {
			dups = append(dups, i)
			continue
		}
		seen[k] = struct{}{}
	}
	if len(dups) == 0 {
		return
	}
	v.report.AddIssue(Issue{
		Type:         "duplicate_keys",
		Severity:     SeverityWarning,
		Description:  fmt.Sprintf("Found %d duplicate values in key column '%s'", len(dups), key),
		Location:     rowLocation(dups, maxDuplicateRowsShown),
		CurrentValue: len(dups),
		SuggestedFix: fmt.Sprintf("Review and consolidate records with duplicate %s values", key),
		Count:        len(dups),
	})
}

func rowAllNull(row []string) bool {
	for _, cell := range row {
		if !IsNull(cell) {
			return false
		}
	}
	return true
}

func (v *Validator) checkEmpty() {
	var empty []int
	for i, row := range v.table.Rows {
		if rowAllNull(row) {
			empty = append(empty, i)
		}
	}
	if len(empty) > 0 {
		v.report.EmptyRowsFound = len(empty)
		v.report.AddIssue(Issue{
			Type:         "empty_rows",
			Severity:     SeverityWarning,
			Description:  fmt.Sprintf("Found %d completely empty rows", len(empty)),
			Location:     rowLocation(empty, 0),
			CurrentValue: len(empty),
			SuggestedFix: "Remove empty rows",
			Count:        len(empty),
		})
	}

	var columns []string
	for i, name := range v.table.Header {
		if v.columnAllNull(i) {
			columns = append(columns, name)
		}
	}
	if len(columns) > 0 {
		v.report.AddIssue(Issue{
			Type:         "empty_columns",
			Severity:     SeverityInfo,
			Description:  fmt.Sprintf("Found %d completely empty columns", len(columns)),
			Location:     "Columns: " + util.FormatNames(columns),
			CurrentValue: columns,
			SuggestedFix: "Consider removing empty columns",
			Count:        len(columns),
		})
	}
}

func (v *Validator) checkWhitespace() {
	total := 0
	for col, name := range v.table.Header {
		if v.columnAllNull(col) {
			continue
		}
		for _, p := range whitespacePatterns {
			var rows []int
			for i, row := range v.table.Rows {
				if !IsNull(row[col]) && p.re.MatchString(row[col]) {
					rows = append(rows, i)
				}
			}
			if len(rows) == 0 {
				continue
			}
			total += len(rows)
			label := strings.ReplaceAll(p.name, "_", " ")
			v.report.AddIssue(Issue{
				Type:         "whitespace_" + p.name,
				Severity:     p.severity,
				Description:  fmt.Sprintf("Found %d values with %s in column '%s'", len(rows), label, name),
				Location:     fmt.Sprintf("Column: %s, %s", name, rowLocation(rows, maxWhitespaceRowsShown)),
				CurrentValue: len(rows),
				SuggestedFix: fmt.Sprintf("Clean %s whitespace", label),
				Count:        len(rows),
			})
		}
	}
	v.report.WhitespaceIssuesFound = total
}

func (v *Validator) checkColumnNames() {
	occurrences := make(map[string]int, v.table.Ncol())
	for _, name := range v.table.Header {
		occurrences[name]++
	}

	for i, name := range v.table.Header {
		if strings.HasPrefix(name, "Unnamed:") {
			v.report.AddIssue(Issue{
				Type:         "unnamed_column",
				Severity:     SeverityWarning,
				Description:  "Found unnamed column: " + name,
				Location:     fmt.Sprintf("Column index %d", i),
				CurrentValue: name,
				SuggestedFix: fmt.Sprintf("Provide meaningful name for column %d", i),
			})
		}
		if n := occurrences[name]; n > 1 {
			v.report.AddIssue(Issue{
				Type:         "duplicate_column_names",
				Severity:     SeverityWarning,
				Description:  fmt.Sprintf("Column name '%s' appears %d times", name, n),
				Location:     "Column: " + name,
				CurrentValue: n,
				SuggestedFix: "Rename duplicate columns to unique names",
			})
		}
		if trimmed := strings.TrimSpace(name); trimmed != name {
			v.report.AddIssue(Issue{
				Type:         "column_name_whitespace",
				Severity:     SeverityInfo,
				Description:  fmt.Sprintf("Column name has leading/trailing whitespace: '%s'", name),
				Location:     "Column: " + name,
				CurrentValue: name,
				SuggestedFix: fmt.Sprintf("Trim whitespace: '%s'", trimmed),
			})
		}
	}
}

// mostlyMatching reports whether more than 80% of values, and more than five
// in total, match re. It also returns the number of matches.
func mostlyMatching(values []string, re *regexp.Regexp) (bool, int) {
	n := 0
	for _, s := range values {
		if re.MatchString(s) {
			n++
		}
	}
	return float64(n) > float64(len(values))*0.8 && n > 5, n
}

func (v *Validator) checkDataTypes() {
	for col, name := range v.table.Header {
		values := v.nonNull(col)
		if len(values) == 0 {
			continue
		}

		if ok, n := mostlyMatching(values, numericPattern); ok {
			v.report.AddIssue(Issue{
				Type:         "potential_numeric_column",
				Severity:     SeverityInfo,
				Description:  fmt.Sprintf("Column '%s' contains values that look like numbers but are stored as text", name),
				Location:     "Column: " + name,
				CurrentValue: "text",
				SuggestedFix: "Convert to numeric data type",
				Count:        n,
			})
		}

		for _, re := range datePatterns {
			ok, n := mostlyMatching(values, re)
			if !ok {
				continue
			}
			v.report.DateFormatIssues += n
			v.report.AddIssue(Issue{
				Type:         "potential_date_column",
				Severity:     SeverityInfo,
				Description:  fmt.Sprintf("Column '%s' contains values that look like dates", name),
				Location:     "Column: " + name,
				CurrentValue: "text",
				SuggestedFix: "Convert to datetime data type",
				Count:        n,
			})
			break
		}
	}
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range strings.ToLower(s) {
		set[r] = struct{}{}
	}
	return set
}

// similar flags two values as a likely typo pair: their lengths differ by at
// most two and they share at least 80% of the shorter value's length in
// distinct (case-folded) characters.
func similar(a, b string) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la-lb > 2 || lb-la > 2 {
		return false
	}
	sa, sb := runeSet(a), runeSet(b)
	common := 0
	for r := range sa {
		if _, ok := sb[r]; ok {
			common++
		}
	}
	return float64(common) >= float64(min(la, lb))*0.8
}

func (v *Validator) checkConsistency() {
	for col, name := range v.table.Header {
		values := v.nonNull(col)
		if len(values) == 0 {
			continue
		}

		distinct := make(map[string]struct{})
		lowered := make(map[string]struct{})
		for _, s := range values {
			distinct[s] = struct{}{}
			lowered[strings.ToLower(s)] = struct{}{}
		}

		if len(distinct) != len(lowered) && len(distinct) > 1 {
			n := len(distinct) - len(lowered)
			v.report.AddIssue(Issue{
				Type:         "inconsistent_capitalization",
				Severity:     SeverityInfo,
				Description:  fmt.Sprintf("Column '%s' has %d values with inconsistent capitalization", name, n),
				Location:     "Column: " + name,
				CurrentValue: n,
				SuggestedFix: "Standardize capitalization",
				Count:        n,
			})
		}

		if len(distinct) >= typoColumnMaxDistinct {
			continue
		}
		unique := make([]string, 0, len(distinct))
		for s := range distinct {
			unique = append(unique, s)
		}
		slices.Sort(unique)

		var pairs [][2]string
		for i, a := range unique {
			for _, b := range unique[i+1:] {
				if similar(a, b) {
					pairs = append(pairs, [2]string{a, b})
				}
			}
		}
		if len(pairs) == 0 {
			continue
		}
		v.report.AddIssue(Issue{
			Type:         "potential_typos",
			Severity:     SeverityInfo,
			Description:  fmt.Sprintf("Column '%s' has potentially similar values that might be typos", name),
			Location:     "Column: " + name,
			CurrentValue: pairs[:min(len(pairs), typoExamples)],
			SuggestedFix: "Review and standardize similar values",
			Count:        len(pairs),
		})
	}
}
