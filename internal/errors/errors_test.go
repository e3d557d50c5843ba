package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByCode(t *testing.T) {
	err := NotFoundf("author %d does not exist", 42)

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrConflict))
}

func TestIs_MatchesThroughWrapping(t *testing.T) {
	inner := Conflict("book 7 already exists")
	wrapped := fmt.Errorf("create book: %w", inner)

	assert.True(t, Is(wrapped, ErrConflict))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := New("connection refused")
	err := Wrap(cause, CodeUnavailable, "mysql not ready")

	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "mysql not ready")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf_UntypedDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInconsistent, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), string(tt.code))
	}
}

func TestExtensions_CarriesCode(t *testing.T) {
	err := Validation("rating out of range")
	assert.Equal(t, map[string]any{"code": "VALIDATION"}, err.Extensions())
}
