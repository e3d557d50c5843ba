// Package seed loads a reference dataset into the three stores.
//
// Seeding is idempotent: every row carries an explicit identifier and is
// written with an upsert, so re-running the seeder converges on the same
// state instead of duplicating rows. The author store resynchronizes its
// identifier sequence after the upsert so later store-generated ids start
// above the seeded range.
package seed

import (
	"context"
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/errors"
	"github.com/bookgraphapp/bookgraph-server/internal/store"
)

//go:embed dataset.json
var defaultDataset []byte

// Dataset is the on-disk seed format.
type Dataset struct {
	Authors []*domain.Author `json:"authors"`
	Books   []*domain.Book   `json:"books"`
	Reviews []*domain.Review `json:"reviews"`
}

// Load reads a dataset from path, or the embedded reference dataset when path
// is empty. The dataset is validated before being returned.
func Load(path string) (*Dataset, error) {
	raw := defaultDataset
	if path != "" {
		var err error
		raw, err = os.ReadFile(path) //#nosec G304 -- dataset path is operator input
		if err != nil {
			return nil, fmt.Errorf("read dataset: %w", err)
		}
	}

	var d Dataset
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate normalizes dates, fills defaults, and checks that every
// cross-store reference resolves inside the dataset. The stores enforce none
// of this, so a bad dataset caught here never reaches them.
func (d *Dataset) Validate() error {
	authorIDs := make(map[string]bool, len(d.Authors))
	for _, a := range d.Authors {
		if _, err := domain.ParseID(a.ID); err != nil {
			return errors.Validationf("author %q: invalid id", a.ID)
		}
		if authorIDs[a.ID] {
			return errors.Validationf("author %q: duplicate id", a.ID)
		}
		authorIDs[a.ID] = true

		if a.Firstname == "" || a.Lastname == "" {
			return errors.Validationf("author %s: firstname and lastname are required", a.ID)
		}

		var err error
		if a.Birthdate, err = domain.NormalizeDate(a.Birthdate); err != nil {
			return errors.Validationf("author %s: %v", a.ID, err)
		}
		if a.Deathdate, err = domain.NormalizeDate(a.Deathdate); err != nil {
			return errors.Validationf("author %s: %v", a.ID, err)
		}
		if a.DateCreated, err = domain.NormalizeDate(a.DateCreated); err != nil {
			return errors.Validationf("author %s: %v", a.ID, err)
		}
		if a.DateCreated == "" {
			a.DateCreated = domain.Today()
		}
	}

	bookIDs := make(map[string]bool, len(d.Books))
	for _, b := range d.Books {
		if _, err := domain.ParseID(b.ID); err != nil {
			return errors.Validationf("book %q: invalid id", b.ID)
		}
		if bookIDs[b.ID] {
			return errors.Validationf("book %q: duplicate id", b.ID)
		}
		bookIDs[b.ID] = true

		if b.Title == "" {
			return errors.Validationf("book %s: title is required", b.ID)
		}
		if !authorIDs[b.AuthorID] {
			return errors.Validationf("book %s: author %q is not in the dataset", b.ID, b.AuthorID)
		}

		var err error
		if b.PublicationDate, err = domain.NormalizeDate(b.PublicationDate); err != nil {
			return errors.Validationf("book %s: %v", b.ID, err)
		}
	}

	reviewIDs := make(map[string]bool, len(d.Reviews))
	for _, r := range d.Reviews {
		if _, err := domain.ParseID(r.ID); err != nil {
			return errors.Validationf("review %q: invalid id", r.ID)
		}
		if reviewIDs[r.ID] {
			return errors.Validationf("review %q: duplicate id", r.ID)
		}
		reviewIDs[r.ID] = true

		if r.ReviewerName == "" || r.Comment == "" {
			return errors.Validationf("review %s: reviewerName and comment are required", r.ID)
		}
		if !bookIDs[r.BookID] {
			return errors.Validationf("review %s: book %q is not in the dataset", r.ID, r.BookID)
		}
		if r.Rating < domain.MinRating || r.Rating > domain.MaxRating {
			return errors.Validationf("review %s: rating %d is out of range [%d, %d]",
				r.ID, r.Rating, domain.MinRating, domain.MaxRating)
		}
	}

	return nil
}

// Seeder writes a dataset into the three stores.
type Seeder struct {
	authors store.AuthorStore
	books   store.BookStore
	reviews store.ReviewStore
	logger  *slog.Logger
}

// New wires the seeder over the store adapters.
func New(authors store.AuthorStore, books store.BookStore, reviews store.ReviewStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		authors: authors,
		books:   books,
		reviews: reviews,
		logger:  logger,
	}
}

// Run upserts the dataset parents-first so a half-seeded state never holds a
// child whose parent was not written yet.
func (s *Seeder) Run(ctx context.Context, d *Dataset) error {
	if err := s.authors.UpsertAuthors(ctx, d.Authors); err != nil {
		return fmt.Errorf("seed authors: %w", err)
	}
	s.logger.InfoContext(ctx, "authors seeded", slog.Int("count", len(d.Authors)))

	if err := s.books.UpsertBooks(ctx, d.Books); err != nil {
		return fmt.Errorf("seed books: %w", err)
	}
	s.logger.InfoContext(ctx, "books seeded", slog.Int("count", len(d.Books)))

	if err := s.reviews.UpsertReviews(ctx, d.Reviews); err != nil {
		return fmt.Errorf("seed reviews: %w", err)
	}
	s.logger.InfoContext(ctx, "reviews seeded", slog.Int("count", len(d.Reviews)))

	return nil
}
