package pipeline

import (
	"github.com/cleared-dev/stmtconv/internal/model"
	"github.com/cleared-dev/stmtconv/internal/profile"
)

// Classify runs the profile's code cascade over each description and
// returns copies of the records with Code and PatternID set.
func Classify(records []model.TransactionRecord, p *profile.Profile) []model.TransactionRecord {
	out := make([]model.TransactionRecord, len(records))
	m := p.Matcher()
	for i, rec := range records {
		rec.Code, rec.PatternID = "", ""
		if match, ok := m.Match(p.MatchText(rec.Description)); ok {
			rec.Code = match.Code
			rec.PatternID = match.PatternID
		}
		out[i] = rec
	}
	return out
}

// Partition splits records into coded and uncoded sets. Every record lands
// in exactly one set and keeps its Index.
func Partition(records []model.TransactionRecord) (coded, uncoded []model.TransactionRecord) {
	for _, rec := range records {
		if rec.Coded() {
			coded = append(coded, rec)
		} else {
			uncoded = append(uncoded, rec)
		}
	}
	return coded, uncoded
}
