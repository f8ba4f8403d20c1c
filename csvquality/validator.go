// Package csvquality checks CSV files converted from hand-maintained
// spreadsheets for common data quality problems and can write a cleaned copy.
package csvquality

import (
	"errors"
	"fmt"
	"time"

	"github.com/SanteonNL/nlk/table"
	"github.com/rs/zerolog"
)

// nullMarkers are read as missing values. The first group is configured
// explicitly, the second mirrors the usual spreadsheet export markers.
var nullMarkers = map[string]struct{}{
	"": {}, "NULL": {}, "null": {}, "N/A": {}, "n/a": {}, "NA": {}, "na": {},
	"NaN": {}, "nan": {}, "None": {}, "<NA>": {}, "#N/A": {}, "-NaN": {}, "-nan": {},
}

// IsNull reports whether a raw cell counts as missing.
func IsNull(cell string) bool {
	_, ok := nullMarkers[cell]
	return ok
}

// check is one independent validation step.
type check struct {
	name string
	run  func(*Validator)
}

// Validator loads one CSV file and runs the quality checks against it.
type Validator struct {
	path     string
	encoding string
	table    *table.Table
	report   *Report
	log      zerolog.Logger
	now      func() time.Time
}

func NewValidator(path, encoding string, log zerolog.Logger) *Validator {
	if encoding == "" {
		encoding = table.EncodingUTF8
	}
	return &Validator{
		path:     path,
		encoding: encoding,
		log:      log.With().Str("file", path).Logger(),
		now:      time.Now,
		report:   &Report{File: path, Encoding: encoding},
	}
}

// Report returns the report of the last run.
func (v *Validator) Report() *Report {
	return v.report
}

// Encoding returns the encoding the file was decoded with.
func (v *Validator) Encoding() string {
	return v.encoding
}

// Table returns the loaded table, or nil if loading failed.
func (v *Validator) Table() *table.Table {
	return v.table
}

// Load reads the file, trying the requested encoding before the fallbacks.
// Files that cannot be decoded are recorded as a critical issue rather than
// returned as an error; unreadable files are returned as an error.
func (v *Validator) Load() (bool, error) {
	requested := v.encoding
	tbl, used, err := table.Load(v.path, requested)
	if err != nil {
		if errors.Is(err, table.ErrNotDecoded) || errors.Is(err, table.ErrEmpty) {
			v.report.AddIssue(Issue{
				Type:         "file_loading_error",
				Severity:     SeverityCritical,
				Description:  fmt.Sprintf("Could not load CSV file with any encoding: %v", err),
				Location:     "file_level",
				CurrentValue: err.Error(),
			})
			v.log.Error().Err(err).Msg("Failed to load CSV")
			return false, nil
		}
		return false, err
	}

	v.table = tbl
	v.encoding = used
	v.report.Encoding = used
	v.report.TotalRows = tbl.Nrow()
	v.report.TotalColumns = tbl.Ncol()

	if used != table.Candidates(requested)[0] {
		v.report.EncodingIssuesFound++
		v.report.AddIssue(Issue{
			Type:         "encoding_detection",
			Severity:     SeverityWarning,
			Description:  fmt.Sprintf("File encoding detected as %s, not %s", used, requested),
			Location:     "file_level",
			CurrentValue: used,
			SuggestedFix: fmt.Sprintf("Consider re-saving with %s encoding", used),
		})
	}

	v.log.Info().
		Int("rows", tbl.Nrow()).
		Int("columns", tbl.Ncol()).
		Str("encoding", used).
		Msg("Loaded CSV")
	return true, nil
}

func (v *Validator) checks() []check {
	return []check{
		{"duplicates", (*Validator).checkDuplicates},
		{"empty_rows_columns", (*Validator).checkEmpty},
		{"whitespace", (*Validator).checkWhitespace},
		{"column_names", (*Validator).checkColumnNames},
		{"data_types", (*Validator).checkDataTypes},
		{"consistency", (*Validator).checkConsistency},
	}
}

// Run loads the file and runs every check. It stops after loading when the
// file could not be decoded.
func (v *Validator) Run() (*Report, error) {
	v.report.GeneratedAt = v.now()

	ok, err := v.Load()
	if err != nil {
		return nil, err
	}
	if !ok {
		return v.report, nil
	}

	for _, c := range v.checks() {
		before := len(v.report.Issues)
		c.run(v)
		v.log.Debug().
			Str("check", c.name).
			Int("issues", len(v.report.Issues)-before).
			Msg("Check finished")
	}

	v.log.Info().Int("issues", len(v.report.Issues)).Msg("Validation finished")
	return v.report, nil
}
