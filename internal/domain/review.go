package domain

import "strings"

// Rating bounds for reviews, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is the canonical review shape. Owned by store C (embedded SQLite).
// BookID references a Book in store B; checked by the mutation orchestrator.
type Review struct {
	ID           string `json:"id"`
	BookID       string `json:"bookId"`
	ReviewerName string `json:"reviewerName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}

// CreateReviewInput carries the fields accepted by the create-review mutation.
type CreateReviewInput struct {
	BookID       string `json:"bookId" validate:"required"`
	ReviewerName string `json:"reviewerName" validate:"required"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Comment      string `json:"comment" validate:"required"`
}

// Normalize trims free-text fields.
func (in *CreateReviewInput) Normalize() error {
	in.ReviewerName = strings.TrimSpace(in.ReviewerName)
	in.Comment = strings.TrimSpace(in.Comment)
	return nil
}

// Review builds the entity to insert.
func (in *CreateReviewInput) Review() *Review {
	return &Review{
		BookID:       in.BookID,
		ReviewerName: in.ReviewerName,
		Rating:       in.Rating,
		Comment:      in.Comment,
	}
}
