package codes

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtconv/internal/model"
)

func TestNewTable_Lookup(t *testing.T) {
	tbl := NewTable([]model.CodeEntry{{Code: "AB1234", Description: "Rent"}})

	d, ok := tbl.Lookup("AB1234")
	assert.True(t, ok)
	assert.Equal(t, "Rent", d)

	_, ok = tbl.Lookup("XY1234")
	assert.False(t, ok)
	assert.Equal(t, 1, tbl.Len())
	assert.Empty(t, tbl.Duplicates())
}

func TestNewTable_DuplicatesLastWins(t *testing.T) {
	tbl := NewTable([]model.CodeEntry{
		{Code: "AB1234", Description: "Rent"},
		{Code: "CD5678", Description: "Water"},
		{Code: "AB1234", Description: "Rent and levies"},
		{Code: "AB1234", Description: "Rent (final)"},
	})

	d, ok := tbl.Lookup("AB1234")
	require.True(t, ok)
	assert.Equal(t, "Rent (final)", d)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"AB1234"}, tbl.Duplicates())
	assert.Len(t, tbl.Entries(), 4)
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	_, ok := tbl.Lookup("AB1234")
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Duplicates())
	assert.Nil(t, tbl.Entries())
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, os.WriteFile(path, []byte("CODE1,DESCRIPTION\nAB1234,Rent\n"), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	d, ok := tbl.Lookup("AB1234")
	assert.True(t, ok)
	assert.Equal(t, "Rent", d)
}

func TestLoad_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, []model.CodeEntry{{Code: "12ABC345", Description: "Cleaning"}}))

	path := filepath.Join(t.TempDir(), "Master.XLSX")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	d, _ := tbl.Lookup("12ABC345")
	assert.Equal(t, "Cleaning", d)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "master.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
