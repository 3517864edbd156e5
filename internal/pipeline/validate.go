package pipeline

import (
	"fmt"

	"github.com/cleared-dev/stmtconv/internal/model"
)

// ValidationError describes one failed check on an output table.
type ValidationError struct {
	Check       string
	Row         int
	Description string
}

func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: %s", e.Check, e.Description)
	}
	return fmt.Sprintf("%s [row %d]: %s", e.Check, e.Row, e.Description)
}

// Validate checks an output table before it is written: the row count
// matches the input, and each row has non-negative amounts with at most
// one side positive. Rows are 1-based.
func Validate(rows []model.CanonicalRow, want int) []*ValidationError {
	var errs []*ValidationError

	if len(rows) != want {
		errs = append(errs, &ValidationError{
			Check:       "cardinality",
			Description: fmt.Sprintf("expected %d rows, got %d", want, len(rows)),
		})
	}

	for i, row := range rows {
		if row.Debit.IsNegative() || row.Credit.IsNegative() {
			errs = append(errs, &ValidationError{
				Check:       "non-negative",
				Row:         i + 1,
				Description: fmt.Sprintf("debit %s, credit %s", row.Debit.StringFixed(2), row.Credit.StringFixed(2)),
			})
		}
		if row.Debit.IsPositive() && row.Credit.IsPositive() {
			errs = append(errs, &ValidationError{
				Check:       "exclusive",
				Row:         i + 1,
				Description: "row has both debit and credit",
			})
		}
	}

	return errs
}
