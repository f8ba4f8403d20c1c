package codebook

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/SanteonNL/nlk/table"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog"
)

// rowColumn carries the original row position through DataFrame operations.
const rowColumn = "__row"

var ErrNoData = errors.New("dataset not loaded")

// DefaultSearchColumns are searched when Search is called without columns.
var DefaultSearchColumns = []string{
	nlk.ColCode, nlk.ColDisplay, nlk.ColDefinition,
	nlk.ColComponent, nlk.ColSystem, nlk.ColPropertyKind,
}

// Dataset is a loaded codebook export. The raw table, the typed rows and a
// DataFrame view share the same row order.
type Dataset struct {
	Source string
	table  *table.Table
	header nlk.Header
	codes  []nlk.LabCode
	frame  dataframe.DataFrame
	log    zerolog.Logger
}

// LoadDataset reads a codebook CSV file.
func LoadDataset(path, encoding string, log zerolog.Logger) (*Dataset, error) {
	log.Info().Str("file", path).Msg("Loading CSV data")

	tbl, used, err := table.Load(path, encoding)
	if err != nil {
		return nil, fmt.Errorf("error loading CSV data: %w", err)
	}

	ds, err := NewDataset(tbl, log)
	if err != nil {
		return nil, err
	}
	ds.Source = path

	log.Info().
		Int("records", ds.Len()).
		Int("columns", tbl.Ncol()).
		Str("encoding", used).
		Msg("Loaded CSV data")
	return ds, nil
}

// NewDataset wraps a table. The code column is required.
func NewDataset(tbl *table.Table, log zerolog.Logger) (*Dataset, error) {
	header := nlk.IndexHeader(tbl.Header)
	if err := header.RequireColumns(nlk.ColCode); err != nil {
		return nil, err
	}

	ds := &Dataset{
		table:  tbl,
		header: header,
		codes:  make([]nlk.LabCode, len(tbl.Rows)),
		log:    log,
	}
	for i, row := range tbl.Rows {
		ds.codes[i] = nlk.FromRecord(header, row)
	}

	if tbl.Nrow() > 0 {
		ds.frame = buildFrame(tbl)
		if ds.frame.Err != nil {
			return nil, fmt.Errorf("failed to build data frame: %w", ds.frame.Err)
		}
	}
	return ds, nil
}

// buildFrame loads the table into a DataFrame with an extra row position
// column. Repeated column names get a suffix so that the first occurrence keeps
// its name, and null markers become empty strings.
func buildFrame(tbl *table.Table) dataframe.DataFrame {
	names := make([]string, 0, tbl.Ncol()+1)
	seen := make(map[string]bool, tbl.Ncol())
	for i, h := range tbl.Header {
		if seen[h] {
			h = fmt.Sprintf("%s__%d", h, i)
		}
		seen[h] = true
		names = append(names, h)
	}

	frame := &table.Table{Header: append(names, rowColumn)}
	for i, row := range tbl.Rows {
		record := make([]string, 0, len(row)+1)
		for _, cell := range row {
			if nlk.IsNull(cell) {
				cell = ""
			}
			record = append(record, cell)
		}
		frame.Rows = append(frame.Rows, append(record, strconv.Itoa(i)))
	}
	return frame.Frame()
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.codes)
}

// Table returns the underlying table.
func (d *Dataset) Table() *table.Table {
	return d.table
}

// Header returns the column index of the dataset.
func (d *Dataset) Header() nlk.Header {
	return d.header
}

// Codes returns the typed rows.
func (d *Dataset) Codes() []nlk.LabCode {
	return d.codes
}

// subset returns a dataset holding the given rows, in the given order.
func (d *Dataset) subset(rows []int) *Dataset {
	tbl := &table.Table{Header: d.table.Header}
	codes := make([]nlk.LabCode, 0, len(rows))
	for _, i := range rows {
		tbl.Rows = append(tbl.Rows, d.table.Rows[i])
		codes = append(codes, d.codes[i])
	}

	sub := &Dataset{
		Source: d.Source,
		table:  tbl,
		header: d.header,
		codes:  codes,
		log:    d.log,
	}
	if len(rows) > 0 {
		sub.frame = buildFrame(tbl)
	}
	return sub
}

// rowsOf reads the original row positions out of a derived frame.
func rowsOf(df dataframe.DataFrame) ([]int, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	if df.Nrow() == 0 {
		return nil, nil
	}
	records := df.Col(rowColumn).Records()
	rows := make([]int, len(records))
	for i, r := range records {
		n, err := strconv.Atoi(r)
		if err != nil {
			return nil, fmt.Errorf("invalid row index %q: %w", r, err)
		}
		rows[i] = n
	}
	return rows, nil
}

// where keeps the rows for which keep returns true.
func (d *Dataset) where(keep func(nlk.LabCode) bool) *Dataset {
	var rows []int
	for i, c := range d.codes {
		if keep(c) {
			rows = append(rows, i)
		}
	}
	return d.subset(rows)
}

// Active returns the codes in force at now.
func (d *Dataset) Active(now time.Time) *Dataset {
	return d.where(func(c nlk.LabCode) bool { return c.IsActive(now) })
}

// Historical returns the codes that expired before now.
func (d *Dataset) Historical(now time.Time) *Dataset {
	return d.where(func(c nlk.LabCode) bool { return c.IsHistorical(now) })
}

// containsFold builds a case-insensitive substring comparator.
func containsFold(term string) func(el series.Element) bool {
	term = strings.ToLower(term)
	return func(el series.Element) bool {
		if el.IsNA() {
			return false
		}
		return strings.Contains(strings.ToLower(el.String()), term)
	}
}

// filterAny keeps the rows where any of the present columns contains term.
func (d *Dataset) filterAny(term string, columns []string) (*Dataset, error) {
	var filters []dataframe.F
	for _, col := range columns {
		if !d.header.Has(col) {
			continue
		}
		filters = append(filters, dataframe.F{
			Colname:    col,
			Comparator: series.CompFunc,
			Comparando: containsFold(term),
		})
	}
	if len(filters) == 0 || d.Len() == 0 {
		return d.subset(nil), nil
	}

	rows, err := rowsOf(d.frame.Filter(filters...))
	if err != nil {
		return nil, fmt.Errorf("failed to filter dataset: %w", err)
	}
	return d.subset(rows), nil
}

// ByDomain returns the codes whose primary or secondary domain contains
// domain, ignoring case.
func (d *Dataset) ByDomain(domain string) (*Dataset, error) {
	return d.filterAny(domain, []string{nlk.ColPrimaryDomain, nlk.ColSecondaryDomain})
}

// Search returns the codes where any of columns contains term, ignoring case.
// Without columns the DefaultSearchColumns are used. Absent columns are skipped.
func (d *Dataset) Search(term string, columns ...string) (*Dataset, error) {
	if len(columns) == 0 {
		columns = DefaultSearchColumns
	}
	return d.filterAny(term, columns)
}

// SortBy orders the dataset by the given column.
func (d *Dataset) SortBy(column string) (*Dataset, error) {
	if d.Len() == 0 {
		return d, nil
	}
	if !d.header.Has(column) {
		return nil, fmt.Errorf("%w: %s", nlk.ErrMissingColumns, column)
	}
	rows, err := rowsOf(d.frame.Arrange(dataframe.Sort(column)))
	if err != nil {
		return nil, fmt.Errorf("failed to sort dataset: %w", err)
	}
	return d.subset(rows), nil
}

// UniqueBy keeps the first row for every distinct value of column.
func (d *Dataset) UniqueBy(column string) *Dataset {
	seen := make(map[string]bool, d.Len())
	var rows []int
	for i, row := range d.table.Rows {
		v := d.header.Value(row, column)
		if seen[v] {
			continue
		}
		seen[v] = true
		rows = append(rows, i)
	}
	return d.subset(rows)
}

// DomainStats holds the per-domain breakdown.
type DomainStats struct {
	Domain     string  `json:"domain" yaml:"domain"`
	Total      int     `json:"total" yaml:"total"`
	Active     int     `json:"active" yaml:"active"`
	Historical int     `json:"historical" yaml:"historical"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// DomainStatistics groups the codes by primary domain, largest domain first.
// Rows without a primary domain are not counted.
func (d *Dataset) DomainStatistics(now time.Time) ([]DomainStats, error) {
	if d.Len() == 0 || !d.header.Has(nlk.ColPrimaryDomain) {
		return nil, nil
	}

	groups := d.frame.GroupBy(nlk.ColPrimaryDomain)
	if groups.Err != nil {
		return nil, fmt.Errorf("failed to group by domain: %w", groups.Err)
	}

	var stats []DomainStats
	for domain, group := range groups.GetGroups() {
		if nlk.IsNull(domain) {
			continue
		}
		rows, err := rowsOf(group)
		if err != nil {
			return nil, err
		}

		s := DomainStats{
			Domain:     domain,
			Total:      len(rows),
			Percentage: float64(len(rows)) / float64(d.Len()) * 100,
		}
		for _, i := range rows {
			if d.codes[i].IsActive(now) {
				s.Active++
			}
			if d.codes[i].IsHistorical(now) {
				s.Historical++
			}
		}
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Domain < stats[j].Domain
	})
	return stats, nil
}
