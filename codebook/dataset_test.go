package codebook

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SanteonNL/nlk/models/nlk"
	"github.com/SanteonNL/nlk/table"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const fixtureCSV = `kode,norsk_bruksnavn,kodedefinisjon,gyldig_fra,gyldig_til,endringsdato,erstattes_av,komponent,system,egenskapsart,enhet,primært_fagområde,sekundært_fagområde
NPU01,B-Hemoglobin,,2010-01-01,,,,Hemoglobin,B,massekonsentrasjon,g/L,Medisinsk biokjemi,
NPU02,P-Natrium,,2011-01-01,2020-01-01,,NPU03,Natrium,P,stoffkonsentrasjon,mmol/L,Medisinsk biokjemi,
NPU03,P-Natrium ny,,2020-01-01,,,,Natrium,P,,mmol/L,Medisinsk biokjemi,
NOR04,BRCA1-mutasjon,Genetisk test,2015-01-01,,,,BRCA1,Blod,,,Medisinsk genetikk,Patologi
NOR05,Fremtid,,2030-01-01,,,,X,,,,Klinisk farmakologi,Medisinsk genetikk
`

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

type DatasetSuite struct {
	suite.Suite
	dir string
	ds  *Dataset
}

func TestDatasetSuite(t *testing.T) {
	suite.Run(t, new(DatasetSuite))
}

func (s *DatasetSuite) SetupTest() {
	s.dir = s.T().TempDir()
	path := filepath.Join(s.dir, "nlk_processing.csv")
	s.Require().NoError(os.WriteFile(path, []byte(fixtureCSV), 0644))

	ds, err := LoadDataset(path, "utf-8", zerolog.Nop())
	s.Require().NoError(err)
	s.ds = ds
}

func codesOf(ds *Dataset) []string {
	var out []string
	for _, c := range ds.Codes() {
		out = append(out, c.Code)
	}
	return out
}

func (s *DatasetSuite) TestLoad() {
	s.Equal(5, s.ds.Len())
	s.Equal(13, s.ds.Table().Ncol())
}

func (s *DatasetSuite) TestActiveAndHistorical() {
	s.Equal([]string{"NPU01", "NPU03", "NOR04"}, codesOf(s.ds.Active(now)))
	s.Equal([]string{"NPU02"}, codesOf(s.ds.Historical(now)))
}

func (s *DatasetSuite) TestByDomain() {
	got, err := s.ds.ByDomain("GENETIKK")
	s.Require().NoError(err)
	s.Equal([]string{"NOR04", "NOR05"}, codesOf(got))

	got, err = s.ds.ByDomain("Immunologi")
	s.Require().NoError(err)
	s.Equal(0, got.Len())
}

func (s *DatasetSuite) TestSearch() {
	got, err := s.ds.Search("natrium")
	s.Require().NoError(err)
	s.Equal([]string{"NPU02", "NPU03"}, codesOf(got))

	got, err = s.ds.Search("brca", nlk.ColComponent, "no_such_column")
	s.Require().NoError(err)
	s.Equal([]string{"NOR04"}, codesOf(got))

	got, err = s.ds.Search("brca", "no_such_column")
	s.Require().NoError(err)
	s.Equal(0, got.Len())
}

func (s *DatasetSuite) TestChainedFilters() {
	genetics, err := s.ds.ByDomain("genetikk")
	s.Require().NoError(err)
	s.Equal([]string{"NOR04"}, codesOf(genetics.Active(now)))
}

func (s *DatasetSuite) TestSortBy() {
	got, err := s.ds.SortBy(nlk.ColDisplay)
	s.Require().NoError(err)
	s.Equal([]string{"NPU01", "NOR04", "NOR05", "NPU02", "NPU03"}, codesOf(got))

	_, err = s.ds.SortBy("missing")
	s.True(errors.Is(err, nlk.ErrMissingColumns))
}

func (s *DatasetSuite) TestDomainStatistics() {
	stats, err := s.ds.DomainStatistics(now)
	s.Require().NoError(err)
	s.Require().Len(stats, 3)

	s.Equal(DomainStats{Domain: "Medisinsk biokjemi", Total: 3, Active: 2, Historical: 1, Percentage: 60}, stats[0])
	s.Equal("Klinisk farmakologi", stats[1].Domain)
	s.Equal(0, stats[1].Active)
	s.Equal("Medisinsk genetikk", stats[2].Domain)
	s.InDelta(20.0, stats[2].Percentage, 0.001)
}

func (s *DatasetSuite) TestExportJSON() {
	path := filepath.Join(s.dir, "active.json")
	_, err := s.ds.Active(now).Export(path, "json")
	s.Require().NoError(err)

	raw, err := os.ReadFile(path)
	s.Require().NoError(err)
	var records []map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &records))
	s.Len(records, 3)
	s.Equal("NPU01", records[0]["kode"])
	s.Nil(records[0]["kodedefinisjon"])
	s.Equal("2010-01-01", records[0]["gyldig_fra"])
}

func TestRecordsNormalizeDates(t *testing.T) {
	tbl, err := table.New(
		[]string{nlk.ColCode, nlk.ColValidFrom, nlk.ColValidTo, nlk.ColComponent},
		[][]string{
			{"NPU01", "25.01.2013", "ukjent", "25.01.2013"},
			{"NPU02", "2013", "", "x"},
		})
	require.NoError(t, err)
	ds, err := NewDataset(tbl, zerolog.Nop())
	require.NoError(t, err)

	raw, err := json.Marshal(ds.Records())
	require.NoError(t, err)
	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &records))

	assert.Equal(t, "2013-01-25", records[0][nlk.ColValidFrom])
	assert.Equal(t, "ukjent", records[0][nlk.ColValidTo])
	assert.Equal(t, "25.01.2013", records[0][nlk.ColComponent])
	assert.Equal(t, "2013", records[1][nlk.ColValidFrom])
	assert.Nil(t, records[1][nlk.ColValidTo])
}

func (s *DatasetSuite) TestExportCSVAndExcel() {
	csvPath := filepath.Join(s.dir, "out.csv")
	_, err := s.ds.Export(csvPath, "CSV")
	s.Require().NoError(err)
	back, _, err := table.Load(csvPath, "utf-8")
	s.Require().NoError(err)
	s.Equal(s.ds.Table().Rows, back.Rows)

	xlsxPath := filepath.Join(s.dir, "out.xlsx")
	_, err = s.ds.Export(xlsxPath, "excel")
	s.Require().NoError(err)
	fromExcel, err := table.ReadExcel(xlsxPath, "")
	s.Require().NoError(err)
	s.Equal(5, fromExcel.Nrow())
}

func (s *DatasetSuite) TestExportSQL() {
	path := filepath.Join(s.dir, "out.sql")
	_, err := s.ds.Export(path, "sql")
	s.Require().NoError(err)

	raw, err := os.ReadFile(path)
	s.Require().NoError(err)
	script := string(raw)
	s.Contains(script, "CREATE TABLE IF NOT EXISTS nlk_codes")
	s.Equal(5, strings.Count(script, "INSERT INTO nlk_codes"))
	s.Contains(script, "'NPU02', 'P-Natrium', NULL, '2011-01-01', '2020-01-01', NULL, 'NPU03'")
	s.True(strings.HasSuffix(script, "COMMIT;\n"))
}

func (s *DatasetSuite) TestExportUnknownFormat() {
	_, err := s.ds.Export(filepath.Join(s.dir, "out.parquet"), "parquet")
	s.True(errors.Is(err, ErrUnsupportedFormat))
}

func TestNewDatasetRequiresCode(t *testing.T) {
	tbl, err := table.New([]string{"navn"}, [][]string{{"x"}})
	require.NoError(t, err)
	_, err = NewDataset(tbl, zerolog.Nop())
	assert.True(t, errors.Is(err, nlk.ErrMissingColumns))
}

func TestEmptyDataset(t *testing.T) {
	tbl, err := table.New([]string{"kode", "primært_fagområde"}, nil)
	require.NoError(t, err)
	ds, err := NewDataset(tbl, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 0, ds.Active(now).Len())
	got, err := ds.Search("x")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
	stats, err := ds.DomainStatistics(now)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestInsertStatementEscapes(t *testing.T) {
	from := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	stmt, err := InsertStatement(nlk.LabCode{Code: "X1", Display: "O'Brien $2 test", ValidFrom: &from})
	require.NoError(t, err)
	assert.Contains(t, stmt, "VALUES ('X1', 'O''Brien $2 test', NULL, '2019-03-01', NULL")
	assert.True(t, strings.HasSuffix(stmt, ");"))
}
