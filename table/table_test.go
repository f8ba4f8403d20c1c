package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func TestLoadUTF8WithBOM(t *testing.T) {
	path := writeFile(t, "bom.csv", append([]byte{0xEF, 0xBB, 0xBF}, []byte("kode,norsk_bruksnavn\nNPU1,Blod\n")...))

	tbl, enc, err := Load(path, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, enc)
	assert.Equal(t, []string{"kode", "norsk_bruksnavn"}, tbl.Header)
	assert.Equal(t, [][]string{{"NPU1", "Blod"}}, tbl.Rows)
}

func TestLoadFallsBackToLatin1(t *testing.T) {
	// "primært" in ISO-8859-1
	path := writeFile(t, "latin1.csv", []byte("kode,prim\xe6rt\nA,\xf8ye\n"))

	tbl, enc, err := Load(path, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, enc)
	assert.Equal(t, "primært", tbl.Header[1])
	assert.Equal(t, "øye", tbl.Rows[0][1])
}

func TestLoadPreferredEncodingFirst(t *testing.T) {
	path := writeFile(t, "cp.csv", []byte("a\n\x80\n"))

	tbl, enc, err := Load(path, "windows-1252")
	require.NoError(t, err)
	assert.Equal(t, EncodingCP1252, enc)
	assert.Equal(t, "€", tbl.Rows[0][0])
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), "utf-8")
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)
	_, _, err := Load(path, "utf-8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotDecoded))
}

func TestReadPadsRowsAndNamesBlankHeaders(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,,c\n1,2\n4,5,6\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1", "c"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "2", ""}, {"4", "5", "6"}}, tbl.Rows)
}

func TestReadRejectsLongRows(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,2,3\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRaggedTable))
}

func TestWriteQuoteAllWithBOM(t *testing.T) {
	tbl, err := New([]string{"kode", "navn"}, [][]string{{"A", `say "hi"`}, {"B", ""}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf, WriteOptions{QuoteAll: true, BOM: true}))

	want := "\xEF\xBB\xBF\"kode\",\"navn\"\n\"A\",\"say \"\"hi\"\"\"\n\"B\",\"\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteMinimalQuoting(t *testing.T) {
	tbl, err := New([]string{"kode", "navn"}, [][]string{{"A", "x, y"}, {"B", "plain"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.Write(&buf, WriteOptions{}))
	assert.Equal(t, "kode,navn\nA,\"x, y\"\nB,plain\n", buf.String())
}

func TestWriteFileThenLoad(t *testing.T) {
	tbl, err := New([]string{"kode", "primært_fagområde"}, [][]string{{"A", "Medisinsk genetikk"}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, tbl.WriteFile(path, WriteOptions{QuoteAll: true, BOM: true}))

	back, enc, err := Load(path, "utf-8")
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, enc)
	if diff := cmp.Diff(tbl, back); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestExcelRoundTrip(t *testing.T) {
	tbl, err := New([]string{"kode", "norsk_bruksnavn", "enhet"}, [][]string{
		{"NPU01", " Hemoglobin ", "g/L"},
		{"", "", ""},
		{"NPU02", "Natrium", ""},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "codes.xlsx")
	require.NoError(t, tbl.WriteExcel(path, "Kodeverk"))

	back, err := ReadExcel(path, "")
	require.NoError(t, err)
	assert.Equal(t, tbl.Header, back.Header)
	assert.Equal(t, 3, back.Nrow())

	assert.Equal(t, 1, back.DropBlankRows())
	assert.Equal(t, [][]string{{"NPU01", "Hemoglobin", "g/L"}, {"NPU02", "Natrium", ""}}, back.Rows)
	assert.Zero(t, back.DropBlankRows())
}

func TestReadExcelMissingSheet(t *testing.T) {
	tbl, err := New([]string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "a.xlsx")
	require.NoError(t, tbl.WriteExcel(path, ""))

	_, err = ReadExcel(path, "Nope")
	assert.Error(t, err)
}

func TestFrame(t *testing.T) {
	tbl, err := New([]string{"kode", "tall"}, [][]string{{"A", "1"}, {"B", ""}})
	require.NoError(t, err)

	df := tbl.Frame()
	require.NoError(t, df.Err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, []string{"1", ""}, df.Col("tall").Records())
}

func TestColumnAndClone(t *testing.T) {
	tbl, err := New([]string{"kode", "tall"}, [][]string{{"A", "1"}, {"B"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", ""}, tbl.Column(1))

	c := tbl.Clone()
	c.Header[0] = "code"
	c.Rows[0][0] = "Z"
	assert.Equal(t, "kode", tbl.Header[0])
	assert.Equal(t, "A", tbl.Rows[0][0])
}

func TestFrameEmpty(t *testing.T) {
	tbl, err := New([]string{"kode"}, nil)
	require.NoError(t, err)
	assert.Error(t, tbl.Frame().Err)
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"cp1252", "utf-8", "utf-8-sig", "latin1"}, Candidates("Windows-1252"))
	assert.Equal(t, FallbackEncodings, Candidates(""))
}
