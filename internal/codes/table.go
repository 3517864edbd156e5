// Package codes holds the master code table used to describe extracted
// transaction codes.
package codes

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Table is a read-only code to description lookup. A nil *Table behaves
// like an empty one.
type Table struct {
	entries    []model.CodeEntry
	byCode     map[string]string
	duplicates []string
}

// NewTable builds a Table. When a code appears more than once the last
// description wins and the code is reported by Duplicates.
func NewTable(entries []model.CodeEntry) *Table {
	byCode := make(map[string]string, len(entries))
	var dups []string
	seenDup := make(map[string]bool)
	for _, e := range entries {
		if _, ok := byCode[e.Code]; ok && !seenDup[e.Code] {
			dups = append(dups, e.Code)
			seenDup[e.Code] = true
		}
		byCode[e.Code] = e.Description
	}
	return &Table{entries: entries, byCode: byCode, duplicates: dups}
}

// Load reads a master code file. Workbooks (.xlsx) and CSV files are supported.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening code table: %w", err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f)
}

// Read parses a master code table from r. The format is chosen by the
// extension of name.
func Read(name string, r io.Reader) (*Table, error) {
	var (
		entries []model.CodeEntry
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		entries, err = ReadXLSX(r)
	case ".csv", ".txt":
		entries, err = ReadCodes(r)
	default:
		return nil, fmt.Errorf("unsupported code table format %q", filepath.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("reading code table %s: %w", name, err)
	}
	return NewTable(entries), nil
}

// Lookup returns the description for code.
func (t *Table) Lookup(code string) (string, bool) {
	if t == nil {
		return "", false
	}
	d, ok := t.byCode[code]
	return d, ok
}

// Len returns the number of distinct codes.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byCode)
}

// Entries returns the entries in file order, duplicates included.
func (t *Table) Entries() []model.CodeEntry {
	if t == nil {
		return nil
	}
	return t.entries
}

// Duplicates returns codes that appeared more than once, in first-seen order.
func (t *Table) Duplicates() []string {
	if t == nil {
		return nil
	}
	return t.duplicates
}
