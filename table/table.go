package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrEmpty       = errors.New("no header row")
	ErrNotDecoded  = errors.New("file could not be decoded with any supported encoding")
	ErrRaggedTable = errors.New("row has more fields than the header")
)

// Table is an in-memory delimited file. Every cell is kept as a string and
// every row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// New builds a table, padding short rows with empty cells.
func New(header []string, rows [][]string) (*Table, error) {
	t := &Table{Header: append([]string(nil), header...)}
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", ErrRaggedTable, i+1, len(row), len(header))
		}
		t.Rows = append(t.Rows, pad(row, len(header)))
	}
	return t, nil
}

func pad(row []string, n int) []string {
	out := make([]string, n)
	copy(out, row)
	return out
}

// Nrow returns the number of data rows.
func (t *Table) Nrow() int {
	return len(t.Rows)
}

// Ncol returns the number of columns.
func (t *Table) Ncol() int {
	return len(t.Header)
}

// ColIndex returns the position of the first column named name, or -1.
func (t *Table) ColIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the cells of column i.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// DropBlankRows removes the rows without any non-blank cell and returns how
// many were removed.
func (t *Table) DropBlankRows() int {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				kept = append(kept, row)
				break
			}
		}
	}
	dropped := len(t.Rows) - len(kept)
	t.Rows = kept
	return dropped
}

// Records returns the header followed by the rows.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header)
	return append(records, t.Rows...)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{Header: append([]string(nil), t.Header...)}
	c.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// Read parses CSV from r. Blank header cells are named "Unnamed: <i>" and
// short rows are padded.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	header := records[0]
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	return New(header, records[1:])
}

// Load reads a CSV file, trying the preferred encoding first and then the
// fallback encodings. It returns the table and the encoding that succeeded.
func Load(path, preferred string) (*Table, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var attempts []string
	for _, enc := range Candidates(preferred) {
		decoded, err := Decode(raw, enc)
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", enc, err))
			continue
		}
		t, err := Read(bytes.NewReader(decoded))
		if err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", enc, err))
			continue
		}
		return t, enc, nil
	}

	return nil, "", fmt.Errorf("%w (%s)", ErrNotDecoded, strings.Join(attempts, "; "))
}

// WriteOptions control the CSV dialect written by Write.
type WriteOptions struct {
	// QuoteAll quotes every field, including the header.
	QuoteAll bool
	// BOM prefixes the output with a UTF-8 byte order mark.
	BOM bool
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// Write writes the table as CSV with "\n" line endings.
func (t *Table) Write(w io.Writer, opts WriteOptions) error {
	bw := bufio.NewWriter(w)
	if opts.BOM {
		if _, err := bw.Write(bom); err != nil {
			return err
		}
	}

	if opts.QuoteAll {
		for _, record := range t.Records() {
			if err := writeQuoted(bw, record); err != nil {
				return err
			}
		}
		return bw.Flush()
	}

	cw := csv.NewWriter(bw)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return bw.Flush()
}

// writeQuoted writes one record with every field quoted, doubling embedded quotes.
func writeQuoted(w *bufio.Writer, record []string) error {
	for i, field := range record {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// WriteFile writes the table to path, creating or truncating it.
func (t *Table) WriteFile(path string, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := t.Write(f, opts); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
