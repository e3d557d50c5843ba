package domain

import (
	"strconv"

	"github.com/bookgraphapp/bookgraph-server/internal/errors"
)

// Identifiers are store-native integers (SERIAL/AUTO_INCREMENT/rowid) but are
// surfaced at the API boundary as strings. ParseID and FormatID are the single
// conversion point; every lookup normalizes through them.

// ParseID converts a surface identifier to its store-native numeric form.
// The conversion is strict: only base-10 positive integers are accepted, so
// round-tripping through FormatID is lossless for every valid identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Validationf("malformed identifier %q", s)
	}
	if id <= 0 {
		return 0, errors.Validationf("identifier must be positive, got %q", s)
	}
	// Reject non-canonical spellings ("+7", "007") that ParseInt tolerates.
	if strconv.FormatInt(id, 10) != s {
		return 0, errors.Validationf("malformed identifier %q", s)
	}
	return id, nil
}

// FormatID converts a store-native identifier to its surface form.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
