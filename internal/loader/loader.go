// Package loader provides the per-request batch loader engine that eliminates
// N+1 fetch patterns when resolving nested entity graphs.
//
// One Loaders set is constructed per incoming request and discarded at request
// end; there is no cross-request caching. Each loader serves one relationship
// edge. All load calls issued against one edge within one batching window are
// coalesced into a single bulk query to the owning store, deduplicated, and
// the results are re-matched by key so every call site receives its value (or
// an explicit absence marker) regardless of row arrival order.
package loader

import (
	"context"
	"time"

	dataloader "github.com/graph-gophers/dataloader/v7"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/store"
)

// batchWait is the scheduling window during which same-tick load calls are
// collected into one batch. Resolvers hand the engine thunks, so the window
// only bounds latency; it does not gate correctness.
const batchWait = 2 * time.Millisecond

// batchCap bounds keys per bulk query; larger batches split into several.
const batchCap = 200

// Loaders is the full set of loader instances for one request, one per
// relationship edge.
type Loaders struct {
	// AuthorByID resolves an author by id (to-one, store A).
	// An unmatched key yields nil, not an error.
	AuthorByID *dataloader.Loader[int64, *domain.Author]

	// BookByID resolves a book by id (to-one, store B).
	BookByID *dataloader.Loader[int64, *domain.Book]

	// BooksByAuthorID resolves every book referencing an author (to-many,
	// store B). An unmatched key yields an empty collection.
	BooksByAuthorID *dataloader.Loader[int64, []*domain.Book]

	// ReviewsByBookID resolves every review referencing a book (to-many,
	// store C).
	ReviewsByBookID *dataloader.Loader[int64, []*domain.Review]
}

// New constructs a fresh set of loaders over the three store adapters.
// Call once per request.
func New(authors store.AuthorStore, books store.BookStore, reviews store.ReviewStore) *Loaders {
	return &Loaders{
		AuthorByID:      newLoader(authorByIDBatch(authors)),
		BookByID:        newLoader(bookByIDBatch(books)),
		BooksByAuthorID: newLoader(booksByAuthorBatch(books)),
		ReviewsByBookID: newLoader(reviewsByBookBatch(reviews)),
	}
}

func newLoader[V any](batch dataloader.BatchFunc[int64, V]) *dataloader.Loader[int64, V] {
	return dataloader.NewBatchedLoader(batch,
		dataloader.WithWait[int64, V](batchWait),
		dataloader.WithBatchCapacity[int64, V](batchCap),
	)
}

// failAll propagates a bulk-fetch failure to every pending key in the batch.
// Partial batch failure is all-or-nothing: the underlying fetch is a single
// store operation.
func failAll[V any](n int, err error) []*dataloader.Result[V] {
	results := make([]*dataloader.Result[V], n)
	for i := range results {
		results[i] = &dataloader.Result[V]{Error: err}
	}
	return results
}

func authorByIDBatch(authors store.AuthorStore) dataloader.BatchFunc[int64, *domain.Author] {
	return func(ctx context.Context, ids []int64) []*dataloader.Result[*domain.Author] {
		rows, err := authors.AuthorsByIDs(ctx, ids)
		if err != nil {
			return failAll[*domain.Author](len(ids), err)
		}

		byID := make(map[int64]*domain.Author, len(rows))
		for _, a := range rows {
			id, err := domain.ParseID(a.ID)
			if err != nil {
				return failAll[*domain.Author](len(ids), err)
			}
			byID[id] = a
		}

		results := make([]*dataloader.Result[*domain.Author], len(ids))
		for i, id := range ids {
			results[i] = &dataloader.Result[*domain.Author]{Data: byID[id]}
		}
		return results
	}
}

func bookByIDBatch(books store.BookStore) dataloader.BatchFunc[int64, *domain.Book] {
	return func(ctx context.Context, ids []int64) []*dataloader.Result[*domain.Book] {
		rows, err := books.BooksByIDs(ctx, ids)
		if err != nil {
			return failAll[*domain.Book](len(ids), err)
		}

		byID := make(map[int64]*domain.Book, len(rows))
		for _, b := range rows {
			id, err := domain.ParseID(b.ID)
			if err != nil {
				return failAll[*domain.Book](len(ids), err)
			}
			byID[id] = b
		}

		results := make([]*dataloader.Result[*domain.Book], len(ids))
		for i, id := range ids {
			results[i] = &dataloader.Result[*domain.Book]{Data: byID[id]}
		}
		return results
	}
}

func booksByAuthorBatch(books store.BookStore) dataloader.BatchFunc[int64, []*domain.Book] {
	return func(ctx context.Context, authorIDs []int64) []*dataloader.Result[[]*domain.Book] {
		rows, err := books.BooksByAuthorIDs(ctx, authorIDs)
		if err != nil {
			return failAll[[]*domain.Book](len(authorIDs), err)
		}

		grouped := make(map[int64][]*domain.Book, len(authorIDs))
		for _, b := range rows {
			authorID, err := domain.ParseID(b.AuthorID)
			if err != nil {
				return failAll[[]*domain.Book](len(authorIDs), err)
			}
			grouped[authorID] = append(grouped[authorID], b)
		}

		results := make([]*dataloader.Result[[]*domain.Book], len(authorIDs))
		for i, authorID := range authorIDs {
			group := grouped[authorID]
			if group == nil {
				// Absence of children is a data condition: empty, not nil.
				group = []*domain.Book{}
			}
			results[i] = &dataloader.Result[[]*domain.Book]{Data: group}
		}
		return results
	}
}

func reviewsByBookBatch(reviews store.ReviewStore) dataloader.BatchFunc[int64, []*domain.Review] {
	return func(ctx context.Context, bookIDs []int64) []*dataloader.Result[[]*domain.Review] {
		rows, err := reviews.ReviewsByBookIDs(ctx, bookIDs)
		if err != nil {
			return failAll[[]*domain.Review](len(bookIDs), err)
		}

		grouped := make(map[int64][]*domain.Review, len(bookIDs))
		for _, r := range rows {
			bookID, err := domain.ParseID(r.BookID)
			if err != nil {
				return failAll[[]*domain.Review](len(bookIDs), err)
			}
			grouped[bookID] = append(grouped[bookID], r)
		}

		results := make([]*dataloader.Result[[]*domain.Review], len(bookIDs))
		for i, bookID := range bookIDs {
			group := grouped[bookID]
			if group == nil {
				group = []*domain.Review{}
			}
			results[i] = &dataloader.Result[[]*domain.Review]{Data: group}
		}
		return results
	}
}

// Cache-invalidation hooks used by the mutation orchestrator to keep
// per-request state consistent after a write. Prime forces the new value in
// (the underlying cache ignores Prime for keys it already holds, so the entry
// is cleared first).

// PrimeAuthor installs an author in the AuthorByID cache.
func (l *Loaders) PrimeAuthor(ctx context.Context, id int64, a *domain.Author) {
	l.AuthorByID.Clear(ctx, id)
	l.AuthorByID.Prime(ctx, id, a)
}

// PrimeBook installs a book in the BookByID cache.
func (l *Loaders) PrimeBook(ctx context.Context, id int64, b *domain.Book) {
	l.BookByID.Clear(ctx, id)
	l.BookByID.Prime(ctx, id, b)
}

// PrimeBooksForAuthor installs an author's book collection in the
// BooksByAuthorID cache.
func (l *Loaders) PrimeBooksForAuthor(ctx context.Context, authorID int64, books []*domain.Book) {
	l.BooksByAuthorID.Clear(ctx, authorID)
	l.BooksByAuthorID.Prime(ctx, authorID, books)
}

// ClearAuthor drops an author's cached entries across author edges.
func (l *Loaders) ClearAuthor(ctx context.Context, id int64) {
	l.AuthorByID.Clear(ctx, id)
	l.BooksByAuthorID.Clear(ctx, id)
}

// ClearBook drops a book's cached entries across book edges.
func (l *Loaders) ClearBook(ctx context.Context, id int64) {
	l.BookByID.Clear(ctx, id)
	l.ReviewsByBookID.Clear(ctx, id)
}

// ClearReviewsForBook drops a book's cached review collection.
func (l *Loaders) ClearReviewsForBook(ctx context.Context, bookID int64) {
	l.ReviewsByBookID.Clear(ctx, bookID)
}
