package model

import "github.com/shopspring/decimal"

// TransactionRecord is one statement row as it moves through the pipeline.
// Extraction fills the raw fields; later stages only add to it.
type TransactionRecord struct {
	Index       int    // position in the source file, used to restore order
	Date        string // raw date text
	Description string
	RawAmount   string

	// Set by the code matcher.
	Code      string
	PatternID string

	// Set by enrichment and normalization.
	DescriptionCode string
	OutputCode      string
	Activity        string
	NormalizedDate  string
	Amount          decimal.Decimal // signed, as exported by the bank
	Debit           decimal.Decimal
	Credit          decimal.Decimal
}

// Coded reports whether the matcher extracted a code for this record.
func (r TransactionRecord) Coded() bool {
	return r.Code != ""
}

// Canonical drops the pipeline bookkeeping and returns the output row.
func (r TransactionRecord) Canonical() CanonicalRow {
	return CanonicalRow{
		Date:            r.NormalizedDate,
		DescriptionCode: r.DescriptionCode,
		Code:            r.OutputCode,
		Activity:        r.Activity,
		Debit:           r.Debit,
		Credit:          r.Credit,
	}
}
