package codebook

import (
	"fmt"
	"time"

	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/SanteonNL/nlk/table"
	"github.com/rs/zerolog"
)

// Selection reasons reported by Deduplicate.
const (
	ReasonSingleOpen  = "single active version"
	ReasonLatestStart = "active version with latest start date"
	ReasonLatestEnd   = "version with latest end date"
)

// Selection records which version was kept for a repeated code.
type Selection struct {
	Code     string `json:"code"`
	Versions int    `json:"versions"`
	Row      int    `json:"row"`
	Reason   string `json:"reason"`
}

// DedupResult is the outcome of Deduplicate.
type DedupResult struct {
	Table          *table.Table `json:"-"`
	InputRows      int          `json:"input_rows"`
	OutputRows     int          `json:"output_rows"`
	DuplicateRows  int          `json:"duplicate_rows"`
	DuplicateCodes int          `json:"duplicate_codes"`
	Selections     []Selection  `json:"selections"`
}

// dedupColumns returns the positions of the code, valid-from and valid-to
// columns. Named columns are preferred; otherwise the first three columns are used.
func dedupColumns(tbl *table.Table) (code, from, to int, err error) {
	code, from, to = tbl.ColIndex(nlk.ColCode), tbl.ColIndex(nlk.ColValidFrom), tbl.ColIndex(nlk.ColValidTo)
	if code >= 0 && from >= 0 && to >= 0 {
		return code, from, to, nil
	}
	if tbl.Ncol() < 3 {
		return 0, 0, 0, fmt.Errorf("%w: need code, valid-from and valid-to columns", nlk.ErrMissingColumns)
	}
	return 0, 1, 2, nil
}

// Deduplicate keeps one version per code. Codes occurring once are kept in
// their original order. For each repeated code, in order of first appearance,
// one version is appended: the open-ended version (the latest start date if
// there are several), else the version with the latest end date. Ties keep the
// earliest row.
func Deduplicate(tbl *table.Table, log zerolog.Logger) (*DedupResult, error) {
	codeCol, fromCol, toCol, err := dedupColumns(tbl)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string][]int)
	var order []string
	for i, row := range tbl.Rows {
		code := row[codeCol]
		if _, ok := byCode[code]; !ok {
			order = append(order, code)
		}
		byCode[code] = append(byCode[code], i)
	}

	out := &table.Table{Header: tbl.Header}
	result := &DedupResult{InputRows: tbl.Nrow(), Table: out}

	for _, row := range tbl.Rows {
		if len(byCode[row[codeCol]]) == 1 {
			out.Rows = append(out.Rows, row)
		}
	}

	for _, code := range order {
		rows := byCode[code]
		if len(rows) < 2 {
			continue
		}
		result.DuplicateCodes++
		result.DuplicateRows += len(rows)

		selected, reason := selectVersion(tbl, rows, fromCol, toCol)
		out.Rows = append(out.Rows, tbl.Rows[selected])
		result.Selections = append(result.Selections, Selection{
			Code:     code,
			Versions: len(rows),
			Row:      selected,
			Reason:   reason,
		})

		log.Debug().
			Str("code", code).
			Int("versions", len(rows)).
			Str("reason", reason).
			Msg("Selected version")
	}

	result.OutputRows = out.Nrow()
	log.Info().
		Int("input", result.InputRows).
		Int("output", result.OutputRows).
		Int("duplicate_codes", result.DuplicateCodes).
		Msg("Deduplicated codes")
	return result, nil
}

func selectVersion(tbl *table.Table, rows []int, fromCol, toCol int) (int, string) {
	var open []int
	for _, i := range rows {
		if nlk.ParseDate(tbl.Rows[i][toCol]) == nil {
			open = append(open, i)
		}
	}

	switch {
	case len(open) == 1:
		return open[0], ReasonSingleOpen
	case len(open) > 1:
		return latest(tbl, open, fromCol), ReasonLatestStart
	default:
		return latest(tbl, rows, toCol), ReasonLatestEnd
	}
}

// latest returns the row with the greatest date in col. Rows with unparseable
// dates only win when no row has a date.
func latest(tbl *table.Table, rows []int, col int) int {
	best := rows[0]
	var bestDate *time.Time
	for _, i := range rows {
		d := nlk.ParseDate(tbl.Rows[i][col])
		if d == nil {
			continue
		}
		if bestDate == nil || d.After(*bestDate) {
			best, bestDate = i, d
		}
	}
	return best
}

// DuplicateCodes returns the codes that occur more than once, in order of
// first appearance.
func DuplicateCodes(codes []nlk.LabCode) []string {
	count := make(map[string]int, len(codes))
	var order []string
	for _, c := range codes {
		if count[c.Code] == 0 {
			order = append(order, c.Code)
		}
		count[c.Code]++
	}

	var dups []string
	for _, code := range order {
		if count[code] > 1 {
			dups = append(dups, code)
		}
	}
	return dups
}
