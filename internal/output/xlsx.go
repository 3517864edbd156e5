package output

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/stmtconv/internal/model"
)

const (
	sheetName   = "Sheet1"
	minColWidth = 12
	maxColWidth = 60
)

// WriteXLSX writes an output table as a workbook with a bold header row.
// Money columns are numeric cells with a two-decimal format.
func WriteXLSX(w io.Writer, schema []model.Column, rows []model.CanonicalRow) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	widths := make([]int, len(schema))
	for i, c := range schema {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, c.Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		widths[i] = utf8.RuneCountInString(c.Header)
	}
	last, _ := excelize.CoordinatesToCellName(len(schema), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, header); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for r, row := range rows {
		for i, c := range schema {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			var err error
			if c.Field.Money() {
				v, _ := row.Amount(c.Field).Round(2).Float64()
				if err = f.SetCellFloat(sheetName, cell, v, -1, 64); err == nil {
					err = f.SetCellStyle(sheetName, cell, cell, money)
				}
			} else {
				text := row.Text(c.Field)
				err = f.SetCellStr(sheetName, cell, text)
				widths[i] = max(widths[i], utf8.RuneCountInString(text))
			}
			if err != nil {
				return fmt.Errorf("writing row %d: %w", r+2, err)
			}
		}
	}

	for i, wd := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(min(max(wd+2, minColWidth), maxColWidth))
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("setting width of %s: %w", col, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
