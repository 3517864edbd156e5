package codes

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/stmtconv/internal/model"
)

const (
	minFields = 2
	colCode   = 0
	colDesc   = 1
)

// Header is the CSV header written by WriteCodes.
var Header = []string{"code", "description"}

// ReadCodes reads a two-column master code CSV. The first row is a header.
// Extra columns are ignored and rows with a blank code are skipped.
func ReadCodes(r io.Reader) ([]model.CodeEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading codes CSV: %w", err)
	}
	return entriesFromRows(records)
}

// WriteCodes writes entries as a master code CSV.
func WriteCodes(w io.Writer, entries []model.CodeEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalCode(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalCode converts a CodeEntry to a CSV row.
func MarshalCode(e model.CodeEntry) []string {
	row := make([]string, minFields)
	row[colCode] = e.Code
	row[colDesc] = e.Description
	return row
}

// UnmarshalCode converts a table row to a CodeEntry.
func UnmarshalCode(record []string) (model.CodeEntry, error) {
	if len(record) < minFields {
		return model.CodeEntry{}, fmt.Errorf("expected %d fields, got %d", minFields, len(record))
	}
	return model.CodeEntry{
		Code:        strings.TrimSpace(record[colCode]),
		Description: strings.TrimSpace(record[colDesc]),
	}, nil
}

// entriesFromRows skips the header row and converts the rest. Spreadsheet
// rows may be ragged; a row holding only a code gets an empty description.
func entriesFromRows(rows [][]string) ([]model.CodeEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows[0]) < minFields {
		return nil, fmt.Errorf("header has %d columns, want at least %d", len(rows[0]), minFields)
	}

	var entries []model.CodeEntry
	for i, row := range rows[1:] {
		if len(row) == 1 {
			row = append(row, "")
		}
		if len(row) == 0 {
			continue
		}
		e, err := UnmarshalCode(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if e.Code == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
