// Package domain contains the canonical entity shapes exposed by the
// aggregation layer, plus identifier and date normalization.
//
// Each entity is owned by exactly one store: authors by PostgreSQL, books by
// MySQL, reviews by embedded SQLite. The cross-store relationships
// (author to books, book to reviews) carry no database-level constraints;
// referential integrity is enforced by the mutation orchestrator.
package domain

import "strings"

// Author is the canonical author shape. Owned by store A (PostgreSQL).
type Author struct {
	ID            string `json:"id"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	Birthdate     string `json:"birthdate,omitempty"`
	Deathdate     string `json:"deathdate,omitempty"`
	FavoriteColor string `json:"favoriteColor,omitempty"`
	Bio           string `json:"bio,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	DateCreated   string `json:"dateCreated"`
}

// CreateAuthorInput carries the fields accepted by the create-author mutation.
type CreateAuthorInput struct {
	Firstname     string `json:"firstname" validate:"required"`
	Lastname      string `json:"lastname" validate:"required"`
	Birthdate     string `json:"birthdate,omitempty"`
	Deathdate     string `json:"deathdate,omitempty"`
	FavoriteColor string `json:"favoriteColor,omitempty"`
	Bio           string `json:"bio,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	DateCreated   string `json:"dateCreated,omitempty"`
}

// Normalize trims free-text fields and canonicalizes date fields.
// Must run before validation so "  " fails the required check.
func (in *CreateAuthorInput) Normalize() error {
	in.Firstname = strings.TrimSpace(in.Firstname)
	in.Lastname = strings.TrimSpace(in.Lastname)
	in.FavoriteColor = strings.TrimSpace(in.FavoriteColor)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Nationality = strings.TrimSpace(in.Nationality)

	var err error
	if in.Birthdate, err = NormalizeDate(in.Birthdate); err != nil {
		return err
	}
	if in.Deathdate, err = NormalizeDate(in.Deathdate); err != nil {
		return err
	}
	if in.DateCreated, err = NormalizeDate(in.DateCreated); err != nil {
		return err
	}
	return nil
}

// Author builds the entity to insert. DateCreated defaults to today when the
// input leaves it unset.
func (in *CreateAuthorInput) Author() *Author {
	created := in.DateCreated
	if created == "" {
		created = Today()
	}
	return &Author{
		Firstname:     in.Firstname,
		Lastname:      in.Lastname,
		Birthdate:     in.Birthdate,
		Deathdate:     in.Deathdate,
		FavoriteColor: in.FavoriteColor,
		Bio:           in.Bio,
		Nationality:   in.Nationality,
		DateCreated:   created,
	}
}
