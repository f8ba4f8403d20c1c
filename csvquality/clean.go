package csvquality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/SanteonNL/nlk/table"
)

var (
	spaceRun     = regexp.MustCompile(space + `+`)
	specialSpace = regexp.MustCompile(`[\x{00a0}\t]`)
)

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || unicode.In(r, unicode.Z) || (r >= 0x1c && r <= 0x1f)
}

// CleanCell normalizes one value: surrounding whitespace is removed, inner
// whitespace runs become a single space, and missing values become empty.
func CleanCell(cell string) string {
	if IsNull(cell) {
		return ""
	}
	s := strings.TrimFunc(cell, isSpace)
	s = spaceRun.ReplaceAllString(s, " ")
	s = specialSpace.ReplaceAllString(s, " ")
	if IsNull(s) {
		return ""
	}
	return s
}

// Clean returns a cleaned copy of the loaded table: exact duplicate rows and
// completely empty rows are dropped, column names are trimmed and every cell
// goes through CleanCell.
func (v *Validator) Clean() (*table.Table, error) {
	if v.table == nil {
		return nil, fmt.Errorf("no data loaded from %s", v.path)
	}

	dropped := make(map[int]bool)
	for _, i := range duplicateRows(v.table.Rows) {
		dropped[i] = true
	}

	out := v.table.Clone()
	for i, name := range out.Header {
		out.Header[i] = strings.TrimSpace(name)
	}
	kept := out.Rows[:0]
	for i, row := range out.Rows {
		if dropped[i] || rowAllNull(row) {
			continue
		}
		for j, cell := range row {
			row[j] = CleanCell(cell)
		}
		kept = append(kept, row)
	}
	out.Rows = kept

	v.report.CleanedRows = out.Nrow()
	v.log.Info().
		Int("original", v.table.Nrow()).
		Int("cleaned", out.Nrow()).
		Msg("Cleaned data")
	return out, nil
}
