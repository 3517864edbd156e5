package output

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatXLSX, false},
		{"xlsx", FormatXLSX, false},
		{" CSV ", FormatCSV, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "jan_absa.xlsx", FileName("import/jan.csv", "absa", FormatXLSX))
	assert.Equal(t, "statement.v2_standard.csv", FileName("statement.v2.txt", "standard", FormatCSV))
	assert.Equal(t, "noext_capitec.csv", FileName("noext", "capitec", FormatCSV))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, capitecSchema, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers(capitecSchema), rows[0])
	assert.Equal(t, "EFT WAGES WAGE1B D123", rows[1][1])

	v, err := f.GetCellValue(sheetName, "E2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "5000", v)
	v, err = f.GetCellValue(sheetName, "F3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500.5", v)

	styleID, err := f.GetCellStyle(sheetName, "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	width, err := f.GetColWidth(sheetName, "B")
	require.NoError(t, err)
	assert.Greater(t, width, float64(len("EFT WAGES WAGE1B D123")))
}

func TestWriter_WriteTable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")

	for _, format := range []Format{FormatCSV, FormatXLSX} {
		w := NewWriter(dir, format)
		path, err := w.WriteTable("import/march.csv", "capitec", capitecSchema, sampleRows())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "march_capitec."+string(format)), path)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	data, err := os.ReadFile(filepath.Join(dir, "march_capitec.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "EFT WAGES WAGE1B D123,D123,B8200,5000.00,0.00")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestWriter_KeepsEarlierTable(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, FormatCSV)

	first, err := w.WriteTable("a.csv", "absa", capitecSchema, sampleRows())
	require.NoError(t, err)
	second, err := w.WriteTable("other/a.csv", "absa", capitecSchema, sampleRows()[:1])
	require.NoError(t, err)
	third, err := w.WriteTable("a.csv", "absa", capitecSchema, sampleRows()[:1])
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "a_absa.csv"), first)
	assert.Equal(t, filepath.Join(dir, "a_absa-2.csv"), second)
	assert.Equal(t, filepath.Join(dir, "a_absa-3.csv"), third)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CASH, DEPOSIT", "first table must survive")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestWriter_ConcurrentSameName(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, FormatCSV)

	const n = 8
	paths := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			paths[i], errs[i] = w.WriteTable("jan.csv", "absa", capitecSchema, sampleRows())
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[paths[i]], "duplicate path %s", paths[i])
		seen[paths[i]] = true
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestWriter_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	w := NewWriter(filepath.Join(file, "out"), FormatCSV)
	_, err := w.WriteTable("a.csv", "absa", capitecSchema, sampleRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating output dir")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}
