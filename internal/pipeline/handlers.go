package pipeline

import (
	"github.com/cleared-dev/stmtconv/internal/importer"
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/normalize"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

// ApplyHandlers runs the profile's per-row handlers on normalized records:
// the activity code comes from the raw description, and debit rows get the
// debit prefix.
func ApplyHandlers(records []model.TransactionRecord, p *profile.Profile) {
	for i := range records {
		rec := &records[i]
		rec.Activity = p.ActivityFor(rec.Description)
		if p.DebitPrefix != "" && rec.Debit.IsPositive() {
			rec.DescriptionCode = p.DebitPrefix + rec.DescriptionCode
		}
	}
}

// TrailerRecord turns a statement's summary values into the final fee row.
// The fee is always a debit.
func TrailerRecord(t *importer.Trailer, p *profile.Profile, index int) (model.TransactionRecord, []*normalize.ParseError) {
	var errs []*normalize.ParseError

	date, ok := normalize.Date(t.Date, p.DateFormat)
	if !ok {
		errs = append(errs, &normalize.ParseError{Row: index + 1, Field: "date", Value: t.Date})
	}
	fees, ok := normalize.Amount(t.Fees)
	if !ok {
		errs = append(errs, &normalize.ParseError{Row: index + 1, Field: "fees", Value: t.Fees})
	}

	return model.TransactionRecord{
		Index:           index,
		Date:            t.Date,
		Description:     t.Description,
		RawAmount:       t.Fees,
		DescriptionCode: t.Description,
		NormalizedDate:  date,
		Amount:          fees,
		Debit:           fees.Abs(),
	}, errs
}
