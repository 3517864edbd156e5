package pipeline

import (
	"sort"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// Reassemble merges the partitions back into source order and drops the
// ordering key.
func Reassemble(coded, uncoded []model.TransactionRecord) []model.CanonicalRow {
	all := make([]model.TransactionRecord, 0, len(coded)+len(uncoded))
	all = append(all, coded...)
	all = append(all, uncoded...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Index < all[j].Index })

	rows := make([]model.CanonicalRow, len(all))
	for i, rec := range all {
		rows[i] = rec.Canonical()
	}
	return rows
}
