// Package service contains the mutation orchestrator: the single place where
// writes that span more than one store are sequenced, checked, and, when
// possible, compensated.
//
// The three stores share no transaction coordinator. Every multi-store write
// follows the same discipline: validate before touching anything, resolve
// cross-store references up front, order the destructive steps children-first,
// and keep the only non-compensatable step for last.
package service

import (
	"context"
	"log/slog"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/errors"
	"github.com/bookgraphapp/bookgraph-server/internal/loader"
	"github.com/bookgraphapp/bookgraph-server/internal/store"
	"github.com/bookgraphapp/bookgraph-server/internal/validation"
)

// Mutator orchestrates writes across the three stores.
type Mutator struct {
	authors  store.AuthorStore
	books    store.BookStore
	reviews  store.ReviewStore
	validate *validation.Validator
	logger   *slog.Logger
}

// NewMutator wires the orchestrator over the three store adapters.
func NewMutator(authors store.AuthorStore, books store.BookStore, reviews store.ReviewStore, v *validation.Validator, logger *slog.Logger) *Mutator {
	return &Mutator{
		authors:  authors,
		books:    books,
		reviews:  reviews,
		validate: v,
		logger:   logger,
	}
}

// CreateAuthor validates the input and inserts the author into store A with a
// store-generated identifier. The adapter resynchronizes the id sequence
// before insertion so rows seeded with explicit ids cannot collide.
func (m *Mutator) CreateAuthor(ctx context.Context, in domain.CreateAuthorInput) (*domain.Author, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	if err := m.validate.Validate(in); err != nil {
		return nil, err
	}

	created, err := m.authors.CreateAuthor(ctx, in.Author())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create author")
	}

	if l := loader.FromContext(ctx); l != nil {
		id, err := domain.ParseID(created.ID)
		if err != nil {
			return nil, err
		}
		l.PrimeAuthor(ctx, id, created)
		// A brand-new author has no books yet; answer the edge without a
		// store round trip.
		l.PrimeBooksForAuthor(ctx, id, []*domain.Book{})
	}

	m.logger.InfoContext(ctx, "author created", slog.String("author_id", created.ID))
	return created, nil
}

// CreateBook validates the input, verifies the referenced author exists in
// store A, rejects caller-supplied identifiers already in use in store B, and
// inserts the book.
func (m *Mutator) CreateBook(ctx context.Context, in domain.CreateBookInput) (*domain.Book, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	if err := m.validate.Validate(in); err != nil {
		return nil, err
	}

	authorID, err := domain.ParseID(in.AuthorID)
	if err != nil {
		return nil, err
	}

	exists, err := m.authorExists(ctx, authorID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "check author reference")
	}
	if !exists {
		return nil, errors.NotFoundf("author %s does not exist", in.AuthorID)
	}

	if in.ID != "" {
		id, err := domain.ParseID(in.ID)
		if err != nil {
			return nil, err
		}
		taken, err := m.books.BookExists(ctx, id)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "check book id")
		}
		if taken {
			return nil, errors.Conflictf("book %s already exists", in.ID)
		}
	}

	created, err := m.books.CreateBook(ctx, in.Book())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create book")
	}

	if l := loader.FromContext(ctx); l != nil {
		id, err := domain.ParseID(created.ID)
		if err != nil {
			return nil, err
		}
		l.PrimeBook(ctx, id, created)
		// The author's cached book collection is now stale.
		l.BooksByAuthorID.Clear(ctx, authorID)
	}

	m.logger.InfoContext(ctx, "book created",
		slog.String("book_id", created.ID),
		slog.String("author_id", created.AuthorID))
	return created, nil
}

// CreateReview validates the input (rating bounds included), verifies the
// referenced book exists in store B, and inserts the review into store C.
func (m *Mutator) CreateReview(ctx context.Context, in domain.CreateReviewInput) (*domain.Review, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	if err := m.validate.Validate(in); err != nil {
		return nil, err
	}

	bookID, err := domain.ParseID(in.BookID)
	if err != nil {
		return nil, err
	}

	exists, err := m.bookExists(ctx, bookID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "check book reference")
	}
	if !exists {
		return nil, errors.NotFoundf("book %s does not exist", in.BookID)
	}

	created, err := m.reviews.CreateReview(ctx, in.Review())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create review")
	}

	if l := loader.FromContext(ctx); l != nil {
		l.ClearReviewsForBook(ctx, bookID)
	}

	m.logger.InfoContext(ctx, "review created",
		slog.String("review_id", created.ID),
		slog.String("book_id", created.BookID))
	return created, nil
}

// DeleteAuthor removes an author and every dependent entity, children before
// parent. It returns false without touching any store when the author does
// not exist.
//
// Order of operations:
//
//  1. Enumerate the author's book ids in store B.
//  2. Open a store-B transaction and delete the books inside it.
//  3. Delete the books' reviews in store C. Store C has no shared transaction
//     with B, so a failure here rolls the uncommitted B transaction back and
//     leaves every store untouched.
//  4. Commit B. From this point the books are durably gone.
//  5. Delete the author in store A. A failure here cannot be compensated
//     (B already committed) and is surfaced as a data inconsistency.
func (m *Mutator) DeleteAuthor(ctx context.Context, id string) (bool, error) {
	authorID, err := domain.ParseID(id)
	if err != nil {
		return false, err
	}

	exists, err := m.authors.AuthorExists(ctx, authorID)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeInternal, "check author")
	}
	if !exists {
		return false, nil
	}

	bookIDs, err := m.books.BookIDsByAuthor(ctx, authorID)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeInternal, "enumerate author books")
	}

	tx, err := m.books.Begin(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeInternal, "begin book delete")
	}

	booksDeleted, err := tx.DeleteBooksByAuthor(ctx, authorID)
	if err != nil {
		tx.Rollback(ctx) //nolint:errcheck // surfacing the original error
		return false, errors.Wrap(err, errors.CodeInternal, "delete author books")
	}

	reviewsDeleted, err := m.reviews.DeleteReviewsByBookIDs(ctx, bookIDs)
	if err != nil {
		// Reviews failed before B committed: rolling back restores B, and C
		// rejected the write, so nothing changed anywhere.
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			m.logger.ErrorContext(ctx, "rollback after review delete failure",
				slog.String("author_id", id), slog.Any("error", rbErr))
		}
		return false, errors.Wrap(err, errors.CodeInternal, "delete book reviews")
	}

	if err := tx.Commit(ctx); err != nil {
		// C already deleted the reviews and cannot take them back.
		m.logger.ErrorContext(ctx, "cross-store inconsistency: reviews deleted but book delete failed to commit",
			slog.String("event", "data_inconsistency"),
			slog.String("author_id", id),
			slog.Int64("reviews_deleted", reviewsDeleted),
			slog.Any("error", err))
		return false, errors.Wrapf(err, errors.CodeInconsistent,
			"reviews for author %s deleted but books remain", id)
	}

	if err := m.authors.DeleteAuthor(ctx, authorID); err != nil {
		// Books and reviews are durably gone; the author row survived. The
		// stores stay divergent until reconciled by hand.
		m.logger.ErrorContext(ctx, "cross-store inconsistency: dependents deleted but author remains",
			slog.String("event", "data_inconsistency"),
			slog.String("author_id", id),
			slog.Int64("books_deleted", booksDeleted),
			slog.Int64("reviews_deleted", reviewsDeleted),
			slog.Any("error", err))
		return false, errors.Wrapf(err, errors.CodeInconsistent,
			"books and reviews for author %s deleted but the author row remains", id)
	}

	if l := loader.FromContext(ctx); l != nil {
		l.ClearAuthor(ctx, authorID)
		for _, bookID := range bookIDs {
			l.ClearBook(ctx, bookID)
		}
	}

	m.logger.InfoContext(ctx, "author deleted",
		slog.String("author_id", id),
		slog.Int64("books_deleted", booksDeleted),
		slog.Int64("reviews_deleted", reviewsDeleted))
	return true, nil
}

// authorExists resolves the reference through the request's loader when one is
// attached (sharing the batch window with any in-flight resolvers), falling
// back to a direct existence probe.
func (m *Mutator) authorExists(ctx context.Context, id int64) (bool, error) {
	if l := loader.FromContext(ctx); l != nil {
		a, err := l.AuthorByID.Load(ctx, id)()
		if err != nil {
			return false, err
		}
		return a != nil, nil
	}
	return m.authors.AuthorExists(ctx, id)
}

func (m *Mutator) bookExists(ctx context.Context, id int64) (bool, error) {
	if l := loader.FromContext(ctx); l != nil {
		b, err := l.BookByID.Load(ctx, id)()
		if err != nil {
			return false, err
		}
		return b != nil, nil
	}
	return m.books.BookExists(ctx, id)
}
