package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/errors"
)

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(domain.CreateBookInput{Title: "No Author"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Contains(t, err.Error(), "authorId is required")
}

func TestValidate_RatingBoundsMessage(t *testing.T) {
	v := New()

	err := v.Validate(domain.CreateReviewInput{
		BookID:       "1",
		ReviewerName: "Sam",
		Rating:       9,
		Comment:      "too high",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating must be at most 5")

	err = v.Validate(domain.CreateReviewInput{
		BookID:       "1",
		ReviewerName: "Sam",
		Rating:       0,
		Comment:      "too low",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating must be at least 1")
}

func TestValidate_ListsEveryFailingField(t *testing.T) {
	v := New()

	err := v.Validate(domain.CreateAuthorInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firstname is required")
	assert.Contains(t, err.Error(), "lastname is required")
}

func TestValidate_Passes(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(domain.CreateReviewInput{
		BookID:       "1",
		ReviewerName: "Sam",
		Rating:       3,
		Comment:      "fine",
	}))
}
