package domain

import (
	"time"

	"github.com/bookgraphapp/bookgraph-server/internal/errors"
)

// DateLayout is the canonical calendar-date form used at the API boundary.
// Dates are truncated to this 10-character form regardless of whether a store
// returns a native date type or a string.
const DateLayout = "2006-01-02"

// NormalizeDate truncates a date string to the canonical YYYY-MM-DD form and
// verifies it parses as a real calendar date. The empty string passes through
// unchanged (optional dates).
func NormalizeDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", errors.Validationf("malformed date %q, expected YYYY-MM-DD", s)
	}
	return s, nil
}

// FormatDate converts a native time value to the canonical date form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current date in canonical form.
func Today() string {
	return FormatDate(time.Now())
}
