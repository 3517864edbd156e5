package codes

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// ReadXLSX reads the first sheet of a master code workbook. Column A holds
// the code and column B the description; row 1 is a header.
func ReadXLSX(r io.Reader) ([]model.CodeEntry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening codes workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("codes workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
	}
	return entriesFromRows(rows)
}

// WriteXLSX writes entries as a single-sheet master code workbook.
func WriteXLSX(w io.Writer, entries []model.CodeEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]string{"CODE", "DESCRIPTION"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]string{e.Code, e.Description}); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing codes workbook: %w", err)
	}
	return nil
}
