package model

import (
	"github.com/shopspring/decimal"
)

// Field names a value of a CanonicalRow that an output schema can select.
type Field string

const (
	FieldDate            Field = "date"
	FieldDescriptionCode Field = "description_code"
	FieldCode            Field = "code"
	FieldActivity        Field = "activity"
	FieldDebit           Field = "debit"
	FieldCredit          Field = "credit"
)

// Valid reports whether f is a known output field.
func (f Field) Valid() bool {
	switch f {
	case FieldDate, FieldDescriptionCode, FieldCode, FieldActivity, FieldDebit, FieldCredit:
		return true
	}
	return false
}

// Money reports whether the field holds a monetary amount.
func (f Field) Money() bool {
	return f == FieldDebit || f == FieldCredit
}

// Column is one output column: the header text and the field it shows.
type Column struct {
	Header string
	Field  Field
}

// CanonicalRow is a normalized statement line, shared by all bank formats.
type CanonicalRow struct {
	Date            string // dd/mm/yyyy when the source date parsed
	DescriptionCode string
	Code            string // empty when no code applies
	Activity        string
	Debit           decimal.Decimal // zero if credit side
	Credit          decimal.Decimal // zero if debit side
}

// Text returns the string value of a non-monetary field.
func (r CanonicalRow) Text(f Field) string {
	switch f {
	case FieldDate:
		return r.Date
	case FieldDescriptionCode:
		return r.DescriptionCode
	case FieldCode:
		return r.Code
	case FieldActivity:
		return r.Activity
	case FieldDebit:
		return r.Debit.StringFixed(2)
	case FieldCredit:
		return r.Credit.StringFixed(2)
	}
	return ""
}

// Amount returns the value of a monetary field, or zero.
func (r CanonicalRow) Amount(f Field) decimal.Decimal {
	switch f {
	case FieldDebit:
		return r.Debit
	case FieldCredit:
		return r.Credit
	}
	return decimal.Zero
}
