package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SanteonNL/nlk/table"
	"github.com/SanteonNL/nlk/util"
	"github.com/SanteonNL/nlk/ux"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// OutputFiles lists the files written by a conversion.
type OutputFiles struct {
	FullCSV       string `json:"full_csv"`
	ProcessingCSV string `json:"processing_csv"`
	Summary       string `json:"summary"`
}

// Statistics describes the converted dataset.
type Statistics struct {
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	Duplicates  int      `json:"duplicates"`
	EmptyRows   int      `json:"empty_rows"`
	ColumnNames []string `json:"column_names"`
	// NonEmpty is aligned with ColumnNames.
	NonEmpty []int `json:"non_empty"`
}

// Result is returned by a successful conversion.
type Result struct {
	InputFile   string      `json:"input_file"`
	OutputFiles OutputFiles `json:"output_files"`
	Statistics  Statistics  `json:"statistics"`
}

// Converter turns the codebook workbook into CSV files.
type Converter struct {
	log zerolog.Logger
	now func() time.Time
}

// NewConverter creates a new Converter
func NewConverter(log zerolog.Logger) *Converter {
	return &Converter{log: log, now: time.Now}
}

// Convert reads sheet (the first one when empty) from the workbook and writes
// the full CSV, the processing CSV and a summary into outputDir.
func (c *Converter) Convert(excelPath, outputDir, sheet string) (*Result, error) {
	if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	c.log.Info().Str("file", excelPath).Msg("Reading Excel file")
	tbl, err := table.ReadExcel(excelPath, sheet)
	if err != nil {
		return nil, err
	}
	c.log.Info().Int("rows", tbl.Nrow()).Int("columns", tbl.Ncol()).Msg("Loaded workbook")

	blank := tbl.DropBlankRows()
	c.log.Debug().Int("rows", blank).Msg("Removed empty rows")

	for i, name := range tbl.Header {
		tbl.Header[i] = StandardizeColumnName(name)
	}
	c.log.Debug().Strs("columns", tbl.Header).Msg("Cleaned column names")

	base := BaseName(excelPath)
	result := &Result{
		InputFile: excelPath,
		OutputFiles: OutputFiles{
			FullCSV:       filepath.Join(outputDir, base+"_full.csv"),
			ProcessingCSV: filepath.Join(outputDir, base+"_processing.csv"),
			Summary:       filepath.Join(outputDir, base+"_summary.txt"),
		},
		Statistics: Describe(tbl),
	}
	result.Statistics.EmptyRows = blank

	if err := tbl.WriteFile(result.OutputFiles.FullCSV, table.WriteOptions{QuoteAll: true, BOM: true}); err != nil {
		return nil, err
	}
	c.log.Info().Str("file", result.OutputFiles.FullCSV).Msg("Saved full dataset")

	if err := tbl.WriteFile(result.OutputFiles.ProcessingCSV, table.WriteOptions{}); err != nil {
		return nil, err
	}
	c.log.Info().Str("file", result.OutputFiles.ProcessingCSV).Msg("Saved processing-optimized CSV")

	summary := Summary(tbl, result, c.now())
	if err := os.WriteFile(result.OutputFiles.Summary, []byte(summary), 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}
	c.log.Info().Str("file", result.OutputFiles.Summary).Msg("Saved data summary")

	return result, nil
}

// StandardizeColumnName trims a header cell, replaces spaces, dashes and
// slashes with underscores, drops parentheses and lowercases the result.
func StandardizeColumnName(name string) string {
	r := strings.NewReplacer(" ", "_", "(", "", ")", "", "-", "_", "/", "_")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}

// BaseName derives the output file prefix from the workbook path.
func BaseName(path string) string {
	return strings.ToLower(strings.ReplaceAll(util.FileStem(path), " ", "_"))
}

// Describe computes the dataset statistics reported after a conversion.
// EmptyRows counts the rows of tbl without any non-empty cell.
func Describe(tbl *table.Table) Statistics {
	stats := Statistics{
		Rows:        tbl.Nrow(),
		Columns:     tbl.Ncol(),
		ColumnNames: append([]string(nil), tbl.Header...),
		NonEmpty:    make([]int, tbl.Ncol()),
	}

	seen := make(map[string]bool, tbl.Nrow())
	for _, row := range tbl.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			stats.Duplicates++
		}
		seen[key] = true

		empty := true
		for i, cell := range row {
			if cell != "" {
				stats.NonEmpty[i]++
				empty = false
			}
		}
		if empty {
			stats.EmptyRows++
		}
	}
	return stats
}

// Summary renders the plain-text summary file.
func Summary(tbl *table.Table, result *Result, generated time.Time) string {
	p := message.NewPrinter(language.English)
	stats := result.Statistics

	var b strings.Builder
	b.WriteString("Norwegian Laboratory Codebook - Data Summary\n")
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Source: %s\n\n", result.InputFile)

	b.WriteString("Dataset Statistics:\n")
	b.WriteString(p.Sprintf("- Total records: %d\n", stats.Rows))
	b.WriteString(p.Sprintf("- Total columns: %d\n\n", stats.Columns))

	b.WriteString("Column Information:\n")
	for i, col := range stats.ColumnNames {
		b.WriteString(p.Sprintf("%2d. %-30s - %d non-null values\n", i+1, col, stats.NonEmpty[i]))
	}

	b.WriteString("\nData Quality:\n")
	b.WriteString(p.Sprintf("- Duplicate rows: %d\n", stats.Duplicates))
	b.WriteString(p.Sprintf("- Empty rows removed: %d\n", stats.EmptyRows))

	b.WriteString("\nSample Data (first 3 rows):\n")
	n := tbl.Nrow()
	if n > 3 {
		n = 3
	}
	b.WriteString(ux.Table(tbl.Header, tbl.Rows[:n]))
	b.WriteString("\n")

	return b.String()
}
