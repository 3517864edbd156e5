package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

// StructuralError means a file does not have the shape its profile
// requires. The file cannot be processed.
type StructuralError struct {
	File   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.File == "" {
		return "structural: " + e.Reason
	}
	return fmt.Sprintf("%s: structural: %s", e.File, e.Reason)
}

// Trailer holds the values lifted from a statement's summary rows.
type Trailer struct {
	Date        string
	Description string
	Fees        string
}

// Statement is the extracted content of one bank export.
type Statement struct {
	Records  []model.TransactionRecord
	Trailer  *Trailer
	Width    int
	DataRows int // rows read after the preamble, summary rows included
}

// Extract reads a bank export and slices each row into a
// TransactionRecord using the profile's column map. Record indexes follow
// file order starting at 0.
func Extract(r io.Reader, p *profile.Profile) (*Statement, error) {
	br := bufio.NewReader(decoder(r, p.Encoding))
	for i := 0; i < p.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &StructuralError{Reason: fmt.Sprintf("file ends within the %d preamble rows", p.SkipRows)}
			}
			return nil, fmt.Errorf("skipping preamble: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = p.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s export: %w", p.Name, err)
	}
	if len(rows) == 0 {
		return nil, &StructuralError{Reason: "no rows"}
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width < p.MinColumns {
		return nil, &StructuralError{Reason: fmt.Sprintf("%s needs %d columns, file has %d", p.Name, p.MinColumns, width)}
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}

	stmt := &Statement{Width: width, DataRows: len(rows)}
	if t := p.Trailer; t != nil {
		n := len(rows)
		if n < 2 {
			return nil, &StructuralError{Reason: "summary rows missing"}
		}
		stmt.Trailer = &Trailer{
			Date:        strings.TrimSpace(rows[n-2][t.DateColumn]),
			Description: strings.TrimSpace(rows[n-2][t.DescriptionColumn]),
			Fees:        strings.TrimSpace(rows[n-1][t.FeeColumn]),
		}
		rows = rows[:n-2]
	}

	dateCol := p.Column(profile.SourceDate)
	descCol := p.Column(profile.SourceDescription)
	amtCol := p.Column(profile.SourceAmount)

	stmt.Records = make([]model.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		desc := row[descCol]
		if p.TrimDescription {
			desc = strings.TrimSpace(desc)
		}
		stmt.Records = append(stmt.Records, model.TransactionRecord{
			Index:       i,
			Date:        row[dateCol],
			Description: desc,
			RawAmount:   row[amtCol],
		})
	}
	return stmt, nil
}

func decoder(r io.Reader, enc profile.Encoding) io.Reader {
	switch enc {
	case profile.EncodingISO88591:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case profile.EncodingWindows1252:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	return r
}
