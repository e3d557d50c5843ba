// Package store defines the adapter contracts for the three backing stores.
//
// Each store is independently owned and knows nothing about the others; there
// is no shared transaction coordinator. Adapters are thin: they issue
// parameterized statements and map rows to canonical entities. All cross-store
// logic (referential checks, ordered compensation) lives above this package in
// the mutation orchestrator.
package store

import (
	"context"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
)

// AuthorStore is the adapter contract for store A (PostgreSQL, authors).
type AuthorStore interface {
	// AuthorsByIDs bulk-fetches authors by key set. Rows may return in any
	// order; missing keys are simply absent from the result.
	AuthorsByIDs(ctx context.Context, ids []int64) ([]*domain.Author, error)

	// ListAuthors returns all authors ordered by id.
	ListAuthors(ctx context.Context) ([]*domain.Author, error)

	// AuthorExists reports whether an author row exists.
	AuthorExists(ctx context.Context, id int64) (bool, error)

	// CreateAuthor inserts an author. An empty a.ID requests a
	// store-generated identifier; the adapter resynchronizes the identifier
	// sequence first so prior externally-supplied ids (seeding) cannot cause
	// a collision.
	CreateAuthor(ctx context.Context, a *domain.Author) (*domain.Author, error)

	// DeleteAuthor removes an author row. Deleting an absent row is not an
	// error; the orchestrator checks existence up front.
	DeleteAuthor(ctx context.Context, id int64) error

	// UpsertAuthors idempotently bulk-loads authors with explicit ids (seed
	// path) and resynchronizes the identifier sequence afterwards.
	UpsertAuthors(ctx context.Context, authors []*domain.Author) error

	Close() error
}

// BookStore is the adapter contract for store B (MySQL, books).
type BookStore interface {
	// BooksByIDs bulk-fetches books by key set, any order.
	BooksByIDs(ctx context.Context, ids []int64) ([]*domain.Book, error)

	// BooksByAuthorIDs bulk-fetches every book whose authorId is in the key
	// set. Grouping by author is the loader's job.
	BooksByAuthorIDs(ctx context.Context, authorIDs []int64) ([]*domain.Book, error)

	// ListBooks returns all books ordered by id.
	ListBooks(ctx context.Context) ([]*domain.Book, error)

	// BookExists reports whether a book row exists.
	BookExists(ctx context.Context, id int64) (bool, error)

	// BookIDsByAuthor enumerates the ids of every book referencing an author.
	BookIDsByAuthor(ctx context.Context, authorID int64) ([]int64, error)

	// CreateBook inserts a book. An empty b.ID requests a store-generated
	// identifier.
	CreateBook(ctx context.Context, b *domain.Book) (*domain.Book, error)

	// Begin opens a transaction for the cascading-delete protocol.
	Begin(ctx context.Context) (BookTx, error)

	// UpsertBooks idempotently bulk-loads books with explicit ids (seed path).
	UpsertBooks(ctx context.Context, books []*domain.Book) error

	Close() error
}

// BookTx is a store-B transaction handle. It is exclusively owned by the
// single mutation in progress and must be released (committed or rolled back)
// on every exit path.
type BookTx interface {
	// DeleteBooksByAuthor deletes every book referencing the author within
	// the transaction and returns the number of rows removed.
	DeleteBooksByAuthor(ctx context.Context, authorID int64) (int64, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ReviewStore is the adapter contract for store C (embedded SQLite, reviews).
// The embedded store is single-writer; the adapter serializes access through
// one connection.
type ReviewStore interface {
	// ReviewsByBookIDs bulk-fetches every review whose bookId is in the key
	// set, any order.
	ReviewsByBookIDs(ctx context.Context, bookIDs []int64) ([]*domain.Review, error)

	// ReviewsByIDs bulk-fetches reviews by key set, any order.
	ReviewsByIDs(ctx context.Context, ids []int64) ([]*domain.Review, error)

	// ListReviews returns all reviews ordered by id.
	ListReviews(ctx context.Context) ([]*domain.Review, error)

	// CreateReview inserts a review. An empty r.ID requests a store-generated
	// identifier.
	CreateReview(ctx context.Context, r *domain.Review) (*domain.Review, error)

	// DeleteReviewsByBookIDs deletes every review referencing any of the
	// given books in one statement and returns the number of rows removed.
	DeleteReviewsByBookIDs(ctx context.Context, bookIDs []int64) (int64, error)

	// UpsertReviews idempotently bulk-loads reviews with explicit ids (seed path).
	UpsertReviews(ctx context.Context, reviews []*domain.Review) error

	Close() error
}
