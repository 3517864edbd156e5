package pipeline

import (
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/normalize"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

// Normalize coerces dates and amounts in place and splits each amount into
// debit and credit. Values that do not parse are kept (dates) or zeroed
// (amounts) and reported.
func Normalize(records []model.TransactionRecord, p *profile.Profile) []*normalize.ParseError {
	var errs []*normalize.ParseError
	for i := range records {
		rec := &records[i]

		date, ok := normalize.Date(rec.Date, p.DateFormat)
		if !ok {
			errs = append(errs, &normalize.ParseError{Row: rec.Index + 1, Field: "date", Value: rec.Date})
		}
		rec.NormalizedDate = date

		amount, ok := normalize.Amount(rec.RawAmount)
		if !ok {
			errs = append(errs, &normalize.ParseError{Row: rec.Index + 1, Field: "amount", Value: rec.RawAmount})
		}
		rec.Amount = amount
		rec.Debit, rec.Credit = normalize.Split(amount, p.Sign)
	}
	return errs
}
