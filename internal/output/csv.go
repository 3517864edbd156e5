package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Headers returns the header row of a schema.
func Headers(schema []model.Column) []string {
	hs := make([]string, len(schema))
	for i, c := range schema {
		hs[i] = c.Header
	}
	return hs
}

// MarshalRow converts a CanonicalRow to a CSV record in schema order.
// Money is written with two decimal places.
func MarshalRow(row model.CanonicalRow, schema []model.Column) []string {
	rec := make([]string, len(schema))
	for i, c := range schema {
		rec[i] = row.Text(c.Field)
	}
	return rec
}

// WriteCSV writes an output table (including header).
func WriteCSV(w io.Writer, schema []model.Column, rows []model.CanonicalRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Headers(schema)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if err := cw.Write(MarshalRow(row, schema)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
