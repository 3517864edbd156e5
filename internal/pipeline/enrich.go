package pipeline

import (
	"github.com/cleared-dev/stmtconv/internal/codes"
	"github.com/cleared-dev/stmtconv/internal/model"
)

// Enrich sets DescriptionCode and OutputCode on copies of records.
//
// With an empty or nil table the description passes through and the
// extracted code is kept. Otherwise a coded record found in the table
// becomes "<description> <code>"; one that is missing becomes " <code>"
// with no output code. Uncoded records keep their description.
func Enrich(records []model.TransactionRecord, table *codes.Table) []model.TransactionRecord {
	out := make([]model.TransactionRecord, len(records))
	for i, rec := range records {
		switch {
		case table.Len() == 0:
			rec.DescriptionCode = rec.Description
			rec.OutputCode = rec.Code
		case !rec.Coded():
			rec.DescriptionCode = rec.Description
			rec.OutputCode = ""
		default:
			desc, ok := table.Lookup(rec.Code)
			if ok {
				rec.DescriptionCode = desc + " " + rec.Code
				rec.OutputCode = rec.Code
			} else {
				rec.DescriptionCode = " " + rec.Code
				rec.OutputCode = ""
			}
		}
		out[i] = rec
	}
	return out
}
