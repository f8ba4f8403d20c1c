package codebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/SanteonNL/nlk/models/fhir"
	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/SanteonNL/nlk/table"
	"github.com/jmoiron/sqlx"
	"golang.org/x/exp/slices"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatJSON  = "json"
	FormatSQL   = "sql"
)

// ExportFormats lists the formats accepted by Export.
var ExportFormats = []string{FormatCSV, FormatExcel, FormatJSON, FormatSQL}

var ErrUnsupportedFormat = errors.New("unsupported format")

// Export writes the dataset to path in the given format and returns the path.
func (d *Dataset) Export(path, format string) (string, error) {
	var err error
	switch strings.ToLower(format) {
	case FormatCSV:
		err = d.table.WriteFile(path, table.WriteOptions{})
	case FormatExcel:
		err = d.table.WriteExcel(path, "")
	case FormatJSON:
		err = d.writeJSON(path)
	case FormatSQL:
		err = d.writeSQL(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return "", err
	}

	d.log.Info().Int("records", d.Len()).Str("file", path).Msg("Exported records")
	return path, nil
}

// Records returns the rows as column/value maps. Null cells map to nil and
// parseable date cells to fhir.DateTime, which encodes as a FHIR date.
func (d *Dataset) Records() []map[string]interface{} {
	records := make([]map[string]interface{}, 0, d.Len())
	for _, row := range d.table.Rows {
		m := make(map[string]interface{}, len(row))
		for i, cell := range row {
			name := d.table.Header[i]
			if _, dup := m[name]; dup {
				continue
			}
			switch {
			case nlk.IsNull(cell):
				m[name] = nil
			case slices.Contains(nlk.DateColumns, name):
				if dt, err := fhir.ParseDateTime(cell); err == nil {
					m[name] = dt
				} else {
					m[name] = cell
				}
			default:
				m[name] = cell
			}
		}
		records = append(records, m)
	}
	return records
}

func (d *Dataset) writeJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(d.Records()); err != nil {
		return fmt.Errorf("failed to encode data to JSON: %w", err)
	}
	return f.Close()
}

// TableName is the table used by the SQL export and the Postgres store.
const TableName = "nlk_codes"

const createTableSQL = `CREATE TABLE IF NOT EXISTS nlk_codes (
    kode                       TEXT NOT NULL,
    norsk_bruksnavn            TEXT,
    kodedefinisjon             TEXT,
    gyldig_fra                 TIMESTAMP,
    gyldig_til                 TIMESTAMP,
    endringsdato               TIMESTAMP,
    erstattes_av               TEXT,
    komponent                  TEXT,
    komponent_spesifikasjon    TEXT,
    system                     TEXT,
    system_spesifikasjon       TEXT,
    egenskapsart               TEXT,
    egenskapsart_spesifikasjon TEXT,
    enhet                      TEXT,
    primaert_fagomraade        TEXT,
    sekundaert_fagomraade      TEXT,
    gruppering                 TEXT
);`

const insertSQL = `INSERT INTO nlk_codes (kode, norsk_bruksnavn, kodedefinisjon, gyldig_fra, gyldig_til, endringsdato, erstattes_av, komponent, komponent_spesifikasjon, system, system_spesifikasjon, egenskapsart, egenskapsart_spesifikasjon, enhet, primaert_fagomraade, sekundaert_fagomraade, gruppering) VALUES (:kode, :norsk_bruksnavn, :kodedefinisjon, :gyldig_fra, :gyldig_til, :endringsdato, :erstattes_av, :komponent, :komponent_spesifikasjon, :system, :system_spesifikasjon, :egenskapsart, :egenskapsart_spesifikasjon, :enhet, :primaert_fagomraade, :sekundaert_fagomraade, :gruppering)`

var placeholder = regexp.MustCompile(`\$(\d+)`)

// InsertStatement renders a self-contained INSERT statement for one code.
func InsertStatement(code nlk.LabCode) (string, error) {
	query, args, err := sqlx.BindNamed(sqlx.DOLLAR, insertSQL, code)
	if err != nil {
		return "", fmt.Errorf("error preparing query with named parameters: %w", err)
	}

	// Placeholders are replaced in one pass so literal values are never rescanned.
	query = placeholder.ReplaceAllStringFunc(query, func(p string) string {
		i, _ := strconv.Atoi(p[1:])
		if i < 1 || i > len(args) {
			return p
		}
		return sqlLiteral(args[i-1])
	})
	return query + ";", nil
}

func sqlLiteral(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		if val == "" {
			return "NULL"
		}
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case *time.Time:
		if val == nil {
			return "NULL"
		}
		return "'" + nlk.FormatDate(val) + "'"
	case time.Time:
		return "'" + nlk.FormatDate(&val) + "'"
	default:
		return fmt.Sprintf("'%v'", val)
	}
}

func (d *Dataset) writeSQL(path string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Norwegian Laboratory Codebook export (%d records)\n", d.Len())
	b.WriteString(createTableSQL)
	b.WriteString("\n\nBEGIN;\n")

	for _, code := range d.codes {
		stmt, err := InsertStatement(code)
		if err != nil {
			return fmt.Errorf("failed to render code %s: %w", code.Code, err)
		}
		b.WriteString(stmt)
		b.WriteString("\n")
	}
	b.WriteString("COMMIT;\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("error writing SQL script: %w", err)
	}
	return nil
}
