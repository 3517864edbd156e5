// Package normalize coerces raw statement dates and amounts into the
// canonical output form. Coercion is best effort: a value that does not
// parse is passed through (dates) or treated as zero (amounts), and the
// failure is reported as a *ParseError for the caller to record.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DisplayLayout is the canonical output date layout (dd/mm/yyyy).
const DisplayLayout = "02/01/2006"

// DateFormat names a fixed numeric date encoding used by a bank export.
type DateFormat string

const (
	// DatePassthrough leaves the raw value untouched.
	DatePassthrough DateFormat = ""
	DateYYYYMMDD    DateFormat = "yyyymmdd"
	DateYYMMDD      DateFormat = "yymmdd"
)

// Layout returns the Go time layout for f.
func (f DateFormat) Layout() (string, bool) {
	switch f {
	case DateYYYYMMDD:
		return "20060102", true
	case DateYYMMDD:
		return "060102", true
	}
	return "", false
}

// Valid reports whether f is a supported date format.
func (f DateFormat) Valid() bool {
	if f == DatePassthrough {
		return true
	}
	_, ok := f.Layout()
	return ok
}

// SignConvention says which side of the ledger a positive amount lands on.
type SignConvention string

const (
	PositiveCredit SignConvention = "positive_credit"
	PositiveDebit  SignConvention = "positive_debit"
)

// Valid reports whether s is a supported sign convention.
func (s SignConvention) Valid() bool {
	return s == PositiveCredit || s == PositiveDebit
}

// ParseError records a field that could not be coerced. It never aborts a run.
// Row is 1-based among the data rows of a file.
type ParseError struct {
	Row   int
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s %q", e.Row, e.Field, e.Value)
}

// Date reformats raw to dd/mm/yyyy under format. It returns the raw value
// unchanged and false when the value does not parse.
func Date(raw string, format DateFormat) (string, bool) {
	layout, ok := format.Layout()
	if !ok {
		return raw, format == DatePassthrough
	}
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return raw, false
	}
	return t.Format(DisplayLayout), true
}

// Amount parses a signed amount. Blank text is zero; anything else that is
// not numeric is zero and reported as false.
func Amount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Split decomposes a signed amount into non-negative debit and credit.
// At most one of the two is positive.
func Split(amount decimal.Decimal, sign SignConvention) (debit, credit decimal.Decimal) {
	pos := decimal.Max(amount, decimal.Zero)
	neg := decimal.Max(amount.Neg(), decimal.Zero)
	if sign == PositiveDebit {
		return pos, neg
	}
	return neg, pos
}
