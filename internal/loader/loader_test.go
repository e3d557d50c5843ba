package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/errors"
	"github.com/bookgraphapp/bookgraph-server/internal/store/storetest"
)

func seededStores() (*storetest.AuthorStore, *storetest.BookStore, *storetest.ReviewStore) {
	authors := storetest.NewAuthorStore()
	authors.Add(&domain.Author{ID: "1", Firstname: "Ursula", Lastname: "Le Guin"})
	authors.Add(&domain.Author{ID: "2", Firstname: "Jorge Luis", Lastname: "Borges"})

	books := storetest.NewBookStore()
	books.Add(&domain.Book{ID: "1", AuthorID: "1", Title: "A Wizard of Earthsea"})
	books.Add(&domain.Book{ID: "2", AuthorID: "1", Title: "The Left Hand of Darkness"})
	books.Add(&domain.Book{ID: "3", AuthorID: "2", Title: "Ficciones"})

	reviews := storetest.NewReviewStore()
	reviews.Add(&domain.Review{ID: "1", BookID: "1", ReviewerName: "Sam", Rating: 5, Comment: "great"})
	reviews.Add(&domain.Review{ID: "2", BookID: "1", ReviewerName: "Priya", Rating: 4, Comment: "good"})

	return authors, books, reviews
}

func TestAuthorByID_BatchesOneFetchPerWindow(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)
	ctx := context.Background()

	// Issue every load before resolving any thunk so they share one window.
	// Key 1 appears twice; the fetch must still see it once.
	thunks := []func() (*domain.Author, error){
		l.AuthorByID.Load(ctx, 1),
		l.AuthorByID.Load(ctx, 2),
		l.AuthorByID.Load(ctx, 1),
	}

	a1, err := thunks[0]()
	require.NoError(t, err)
	a2, err := thunks[1]()
	require.NoError(t, err)
	a1again, err := thunks[2]()
	require.NoError(t, err)

	assert.Equal(t, "Ursula", a1.Firstname)
	assert.Equal(t, "Jorge Luis", a2.Firstname)
	assert.Same(t, a1, a1again)

	assert.Equal(t, 1, authors.BulkFetches, "all loads in one window must share one bulk fetch")
	assert.ElementsMatch(t, []int64{1, 2}, authors.LastKeys, "duplicate keys must be deduplicated")
}

func TestAuthorByID_AbsentKeyIsNilNotError(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)

	a, err := l.AuthorByID.Load(context.Background(), 999)()
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAuthorByID_CachesWithinRequest(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)
	ctx := context.Background()

	_, err := l.AuthorByID.Load(ctx, 1)()
	require.NoError(t, err)
	_, err = l.AuthorByID.Load(ctx, 1)()
	require.NoError(t, err)

	assert.Equal(t, 1, authors.BulkFetches, "second load of a cached key must not hit the store")
}

func TestBooksByAuthorID_GroupsAndReturnsEmptyForChildless(t *testing.T) {
	authors, books, reviews := seededStores()
	authors.Add(&domain.Author{ID: "3", Firstname: "Octavia", Lastname: "Butler"})
	l := New(authors, books, reviews)
	ctx := context.Background()

	thunks := []func() ([]*domain.Book, error){
		l.BooksByAuthorID.Load(ctx, 1),
		l.BooksByAuthorID.Load(ctx, 2),
		l.BooksByAuthorID.Load(ctx, 3),
	}

	byAuthor1, err := thunks[0]()
	require.NoError(t, err)
	byAuthor2, err := thunks[1]()
	require.NoError(t, err)
	byAuthor3, err := thunks[2]()
	require.NoError(t, err)

	assert.Len(t, byAuthor1, 2)
	assert.Len(t, byAuthor2, 1)
	assert.NotNil(t, byAuthor3, "childless parent must get an empty collection, not nil")
	assert.Empty(t, byAuthor3)

	assert.Equal(t, 1, books.AuthorBulkFetches)
}

func TestReviewsByBookID_GroupsByBook(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)
	ctx := context.Background()

	thunks := []func() ([]*domain.Review, error){
		l.ReviewsByBookID.Load(ctx, 1),
		l.ReviewsByBookID.Load(ctx, 2),
	}

	forBook1, err := thunks[0]()
	require.NoError(t, err)
	forBook2, err := thunks[1]()
	require.NoError(t, err)

	assert.Len(t, forBook1, 2)
	assert.Empty(t, forBook2)
	assert.Equal(t, 1, reviews.BulkFetches)
}

func TestBatchFailure_PropagatesToEveryKey(t *testing.T) {
	authors, books, reviews := seededStores()
	authors.FailBulk = errors.Unavailable("postgres not ready")
	l := New(authors, books, reviews)
	ctx := context.Background()

	thunks := []func() (*domain.Author, error){
		l.AuthorByID.Load(ctx, 1),
		l.AuthorByID.Load(ctx, 2),
	}

	for _, thunk := range thunks {
		_, err := thunk()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrUnavailable))
	}

	assert.Equal(t, 1, authors.BulkFetches)
}

func TestPrimeAuthor_OverwritesCachedValue(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)
	ctx := context.Background()

	first, err := l.AuthorByID.Load(ctx, 1)()
	require.NoError(t, err)
	require.Equal(t, "Ursula", first.Firstname)

	updated := &domain.Author{ID: "1", Firstname: "U.K.", Lastname: "Le Guin"}
	l.PrimeAuthor(ctx, 1, updated)

	got, err := l.AuthorByID.Load(ctx, 1)()
	require.NoError(t, err)
	assert.Same(t, updated, got, "prime must replace the cached entry, not be ignored")
	assert.Equal(t, 1, authors.BulkFetches)
}

func TestPrimeBooksForAuthor_AnswersWithoutFetch(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)
	ctx := context.Background()

	l.PrimeBooksForAuthor(ctx, 7, []*domain.Book{})

	got, err := l.BooksByAuthorID.Load(ctx, 7)()
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, books.AuthorBulkFetches)
}

func TestClearAuthor_ForcesRefetch(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)
	ctx := context.Background()

	_, err := l.AuthorByID.Load(ctx, 1)()
	require.NoError(t, err)

	l.ClearAuthor(ctx, 1)

	_, err = l.AuthorByID.Load(ctx, 1)()
	require.NoError(t, err)
	assert.Equal(t, 2, authors.BulkFetches, "cleared key must be fetched again")
}

func TestFromContext_RoundTrip(t *testing.T) {
	authors, books, reviews := seededStores()
	l := New(authors, books, reviews)

	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
