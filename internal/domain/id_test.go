package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraphapp/bookgraph-server/internal/errors"
)

func TestParseID_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1", 1},
		{"42", 42},
		{"9223372036854775807", 9223372036854775807},
	}

	for _, tt := range tests {
		got, err := ParseID(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseID_Invalid(t *testing.T) {
	tests := []string{
		"",
		"abc",
		"12abc",
		"1.5",
		"0x10",
		" 7",
		"7 ",
		"0",
		"-3",
		"+7",
		"007",
	}

	for _, in := range tests {
		_, err := ParseID(in)
		require.Error(t, err, "input %q", in)
		assert.True(t, errors.Is(err, errors.ErrValidation), "input %q should be a validation error", in)
	}
}

func TestFormatID_RoundTrip(t *testing.T) {
	for _, id := range []int64{1, 17, 1000000} {
		parsed, err := ParseID(FormatID(id))
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}
