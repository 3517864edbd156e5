package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const runDateLayout = "20060102"

// FormatRunID returns a run ID like "20250115-001".
func FormatRunID(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%03d", day.Format(runDateLayout), seq)
}

// ParseRunID parses "20250115-001" into its day and sequence.
func ParseRunID(id string) (day time.Time, seq int, err error) {
	date, num, ok := strings.Cut(id, "-")
	if !ok {
		return time.Time{}, 0, fmt.Errorf("invalid run ID format: %q", id)
	}

	day, err = time.Parse(runDateLayout, date)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid date in run ID %q: %w", id, err)
	}

	seq, err = strconv.Atoi(num)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid sequence in run ID %q: %w", id, err)
	}
	if seq < 1 {
		return time.Time{}, 0, fmt.Errorf("invalid sequence in run ID %q", id)
	}

	return day, seq, nil
}

// SameDay reports whether a run ID was issued on day.
func SameDay(id string, day time.Time) bool {
	return strings.HasPrefix(id, day.Format(runDateLayout)+"-")
}
