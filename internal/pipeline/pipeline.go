// Package pipeline turns one bank export into a canonical table. Codes are
// matched per row, rows are partitioned into coded and uncoded sets and
// enriched, amounts and dates are normalized, and the sets are merged back
// into source order.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/normalize"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

// FileResult is the outcome of one processed file.
type FileResult struct {
	Name        string
	Profile     string
	Schema      []model.Column
	Rows        []model.CanonicalRow
	Coded       int
	Uncoded     int
	ParseErrors []*normalize.ParseError
	OutputPath  string
}

// Process runs a single export through the pipeline. It reads nothing but r
// and loaded, which it does not modify.
func Process(name string, r io.Reader, loaded profile.Loaded) (*FileResult, error) {
	p := loaded.Profile
	if p == nil {
		return nil, &profile.ConfigurationError{Reason: "no profile loaded"}
	}

	stmt, err := importer.Extract(r, p)
	if err != nil {
		var se *importer.StructuralError
		if errors.As(err, &se) {
			se.File = name
		}
		return nil, err
	}

	coded, uncoded := Partition(Classify(stmt.Records, p))
	table := loaded.Codes
	if !p.UsesLookup() {
		table = nil
	}
	coded = Enrich(coded, table)
	uncoded = Enrich(uncoded, table)

	var perrs []*normalize.ParseError
	perrs = append(perrs, Normalize(coded, p)...)
	perrs = append(perrs, Normalize(uncoded, p)...)
	ApplyHandlers(coded, p)
	ApplyHandlers(uncoded, p)

	rows := Reassemble(coded, uncoded)
	// One output row per data row; the two summary rows become one fee row.
	want := stmt.DataRows
	if stmt.Trailer != nil {
		rec, errs := TrailerRecord(stmt.Trailer, p, len(stmt.Records))
		perrs = append(perrs, errs...)
		rows = append(rows, rec.Canonical())
		want--
	}

	if errs := Validate(rows, want); len(errs) > 0 {
		return nil, fmt.Errorf("validating %s: %w", name, errs[0])
	}

	sort.SliceStable(perrs, func(i, j int) bool { return perrs[i].Row < perrs[j].Row })

	return &FileResult{
		Name:        name,
		Profile:     p.Name,
		Schema:      p.Schema,
		Rows:        rows,
		Coded:       len(coded),
		Uncoded:     len(uncoded),
		ParseErrors: perrs,
	}, nil
}
