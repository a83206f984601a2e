package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampFormat is the fixed-width timestamp written for rows whose
// creation order matters (the surplus transaction ledger). The fixed
// nanosecond width keeps lexicographic and chronological order identical.
const TimestampFormat = "2006-01-02T15:04:05.000000000Z"

// DateFormat is the storage format for date-only columns.
const DateFormat = "2006-01-02"

// ParseTime parses a date string in "2006-01-02", RFC3339 or SQLite
// CURRENT_TIMESTAMP format.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{DateFormat, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// parseDecimal converts a stored NUMERIC text column into a decimal amount.
// Empty strings scan as zero.
func parseDecimal(str string) (decimal.Decimal, error) {
	if str == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse decimal: %w", err)
	}
	return d, nil
}
