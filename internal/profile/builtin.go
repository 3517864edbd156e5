package profile

import (
	"github.com/cleared-dev/stmtconv/internal/matcher"
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/normalize"
)

// codeCascade lists the accounting code shapes, most specific first.
var codeCascade = []struct {
	id    string
	shape string
}{
	{"pattern6", "d2 u3 d4"},
	{"pattern2", "d2 u4 d3"},
	{"pattern1", "d2 u3 d3"},
	{"pattern7", "u3 d4"},
	{"pattern8", "u3 d3"},
	{"pattern3", "d1 u2 d3"},
	{"pattern4", "d1 u3 d3"},
	{"pattern5", "u2 d4"},
	{"pattern9", "d1 u4 d2"},
	{"pattern10", "d1 u4"},
	{"pattern11", "u4 d2"},
	{"pattern12", "u3 d3"}, // shadowed by pattern8
}

// CodeCascade returns the accounting code cascade with the given anchor.
func CodeCascade(anchor matcher.Anchor) []RuleDefinition {
	rules := make([]RuleDefinition, len(codeCascade))
	for i, c := range codeCascade {
		rules[i] = RuleDefinition{ID: c.id, Shape: c.shape, Anchor: anchor}
	}
	return rules
}

func money() []ColumnDefinition {
	return []ColumnDefinition{
		{Header: "DEBIT", Field: model.FieldDebit},
		{Header: "CREDIT", Field: model.FieldCredit},
	}
}

// StandardBank: eight-column export. The description starts with a
// six-character transaction type that is ignored when matching codes.
// Codes are looked up in the master file.
func StandardBank() Definition {
	return Definition{
		Name:        "standard",
		DisplayName: "Standard Bank",
		MinColumns:  8,
		Columns: []ColumnMapping{
			{Field: SourceDate, Index: 1},
			{Field: SourceAmount, Index: 3},
			{Field: SourceDescription, Index: 5},
		},
		TrimDescription: true,
		StripPrefix:     6,
		Rules:           CodeCascade(matcher.AnchorStart),
		Suppress:        true,
		DateFormat:      string(normalize.DateYYYYMMDD),
		Sign:            string(normalize.PositiveCredit),
		Lookup:          LookupRequired,
		Schema: append([]ColumnDefinition{
			{Header: "DATE", Field: model.FieldDate},
			{Header: "DESCRIPTION_CODE", Field: model.FieldDescriptionCode},
			{Header: "CODE", Field: model.FieldCode},
		}, money()...),
	}
}

// ABSA: codes may appear anywhere in the description and no master file
// is needed.
func ABSA() Definition {
	return Definition{
		Name:        "absa",
		DisplayName: "ABSA Bank",
		MinColumns:  7,
		Columns: []ColumnMapping{
			{Field: SourceDate, Index: 2},
			{Field: SourceDescription, Index: 4},
			{Field: SourceAmount, Index: 6},
		},
		Rules:      CodeCascade(matcher.AnchorAnywhere),
		DateFormat: string(normalize.DateYYMMDD),
		Sign:       string(normalize.PositiveCredit),
		Schema: append([]ColumnDefinition{
			{Header: "DATE", Field: model.FieldDate},
			{Header: "DESCRIPTION", Field: model.FieldDescriptionCode},
			{Header: "CODE", Field: model.FieldCode},
		}, money()...),
	}
}

// Capitec: three preamble lines and two trailing summary rows. The site
// code (D plus three digits) is taken from the reference and the activity
// from its sixth character. Debits are wage payments.
func Capitec() Definition {
	return Definition{
		Name:        "capitec",
		DisplayName: "Capitec Bank",
		SkipRows:    3,
		MinColumns:  6,
		Columns: []ColumnMapping{
			{Field: SourceDate, Index: 1},
			{Field: SourceDescription, Index: 3},
			{Field: SourceAmount, Index: 4},
		},
		Rules: []RuleDefinition{
			{ID: "site", Shape: "=D d3", Anchor: matcher.AnchorAnywhere, Unbounded: true},
		},
		Sign: string(normalize.PositiveCredit),
		Schema: append([]ColumnDefinition{
			{Header: "DATE", Field: model.FieldDate},
			{Header: "REFERENCE", Field: model.FieldDescriptionCode},
			{Header: "SITE", Field: model.FieldCode},
			{Header: "ACTIVITY", Field: model.FieldActivity},
		}, money()...),
		Trailer:     &FeeTrailer{DateColumn: 1, DescriptionColumn: 2, FeeColumn: 5},
		Activity:    &ActivityRule{Offset: 5, Codes: map[string]string{"B": "B8200", "C": "C1200"}},
		DebitPrefix: "EFT WAGES ",
	}
}

// Builtins returns the definitions shipped with stmtconv.
func Builtins() []Definition {
	return []Definition{StandardBank(), ABSA(), Capitec()}
}
