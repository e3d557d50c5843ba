package domain

import "strings"

// Book is the canonical book shape. Owned by store B (MySQL).
// AuthorID references an Author in store A; the reference is checked by the
// mutation orchestrator at creation time, never by the database.
type Book struct {
	ID              string `json:"id"`
	AuthorID        string `json:"authorId"`
	Title           string `json:"title"`
	Synopsis        string `json:"synopsis,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
}

// CreateBookInput carries the fields accepted by the create-book mutation.
// ID is optional; when set, the identifier is caller-supplied and must not
// already exist in store B.
type CreateBookInput struct {
	ID              string `json:"id,omitempty"`
	AuthorID        string `json:"authorId" validate:"required"`
	Title           string `json:"title" validate:"required"`
	Synopsis        string `json:"synopsis,omitempty"`
	ISBN            string `json:"isbn,omitempty"`
	PublicationDate string `json:"publicationDate,omitempty"`
}

// Normalize trims free-text fields and canonicalizes the publication date.
func (in *CreateBookInput) Normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Synopsis = strings.TrimSpace(in.Synopsis)
	in.ISBN = strings.TrimSpace(in.ISBN)

	var err error
	if in.PublicationDate, err = NormalizeDate(in.PublicationDate); err != nil {
		return err
	}
	return nil
}

// Book builds the entity to insert.
func (in *CreateBookInput) Book() *Book {
	return &Book{
		ID:              in.ID,
		AuthorID:        in.AuthorID,
		Title:           in.Title,
		Synopsis:        in.Synopsis,
		ISBN:            in.ISBN,
		PublicationDate: in.PublicationDate,
	}
}
