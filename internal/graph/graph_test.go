package graph

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/loader"
	"github.com/bookgraphapp/bookgraph-server/internal/service"
	"github.com/bookgraphapp/bookgraph-server/internal/store/storetest"
	"github.com/bookgraphapp/bookgraph-server/internal/validation"
)

type graphTestEnv struct {
	schema  graphql.Schema
	authors *storetest.AuthorStore
	books   *storetest.BookStore
	reviews *storetest.ReviewStore
}

// setupGraphTest builds an executable schema over in-memory stores seeded
// with two authors, three books, and two reviews.
func setupGraphTest(t *testing.T) *graphTestEnv {
	t.Helper()

	authors := storetest.NewAuthorStore()
	authors.Add(&domain.Author{ID: "1", Firstname: "Ursula", Lastname: "Le Guin", DateCreated: "2024-01-05"})
	authors.Add(&domain.Author{ID: "2", Firstname: "Jorge Luis", Lastname: "Borges", DateCreated: "2024-01-05"})

	books := storetest.NewBookStore()
	books.Add(&domain.Book{ID: "1", AuthorID: "1", Title: "A Wizard of Earthsea"})
	books.Add(&domain.Book{ID: "2", AuthorID: "1", Title: "The Left Hand of Darkness"})
	books.Add(&domain.Book{ID: "3", AuthorID: "2", Title: "Ficciones"})

	reviews := storetest.NewReviewStore()
	reviews.Add(&domain.Review{ID: "1", BookID: "1", ReviewerName: "Sam", Rating: 5, Comment: "great"})
	reviews.Add(&domain.Review{ID: "2", BookID: "1", ReviewerName: "Priya", Rating: 4, Comment: "good"})

	mutator := service.NewMutator(authors, books, reviews, validation.New(), slog.New(slog.DiscardHandler))
	resolver := NewResolver(authors, books, reviews, mutator)

	schema, err := resolver.BuildSchema()
	require.NoError(t, err)

	return &graphTestEnv{schema: schema, authors: authors, books: books, reviews: reviews}
}

// exec runs one request with a fresh loader set, the way the HTTP handler does.
func (e *graphTestEnv) exec(t *testing.T, query string, variables map[string]any) *graphql.Result {
	t.Helper()
	ctx := loader.NewContext(context.Background(), loader.New(e.authors, e.books, e.reviews))
	return graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
}

func TestQuery_NestedGraphBatchesPerEdge(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `{
		authors {
			firstname
			books {
				title
				reviews { rating }
			}
		}
	}`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	authors := data["authors"].([]interface{})
	require.Len(t, authors, 2)

	first := authors[0].(map[string]interface{})
	assert.Equal(t, "Ursula", first["firstname"])
	firstBooks := first["books"].([]interface{})
	require.Len(t, firstBooks, 2)

	wizard := firstBooks[0].(map[string]interface{})
	assert.Equal(t, "A Wizard of Earthsea", wizard["title"])
	assert.Len(t, wizard["reviews"].([]interface{}), 2)

	// Both authors' books edges collapse to one store query, and all three
	// books' reviews edges collapse to one store query.
	assert.Equal(t, 1, env.books.AuthorBulkFetches, "books-by-author must be one bulk fetch")
	assert.Equal(t, 1, env.reviews.BulkFetches, "reviews-by-book must be one bulk fetch")
}

func TestQuery_BookToAuthorDedupes(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `{
		books {
			title
			author { lastname }
		}
	}`, nil)
	require.Empty(t, result.Errors)

	// Three books reference two distinct authors: one fetch, two keys.
	assert.Equal(t, 1, env.authors.BulkFetches)
	assert.ElementsMatch(t, []int64{1, 2}, env.authors.LastKeys)
}

func TestQuery_AbsentEntityIsNull(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `{ author(id: "999") { firstname } }`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	assert.Nil(t, data["author"])
}

func TestQuery_FailingEdgeDoesNotAbortSiblings(t *testing.T) {
	env := setupGraphTest(t)
	env.reviews.FailBulk = errors.New("store C down")

	result := env.exec(t, `{
		authors { firstname }
		books {
			title
			reviews { rating }
		}
	}`, nil)
	require.NotEmpty(t, result.Errors)
	require.NotNil(t, result.Data, "a failing edge must not null the whole response")

	data := result.Data.(map[string]interface{})

	// The authors root field does not touch store C and must survive intact.
	authors := data["authors"].([]interface{})
	assert.Len(t, authors, 2)

	// Each book keeps its own fields; only the failing reviews edge is null.
	books := data["books"].([]interface{})
	require.Len(t, books, 3)
	for _, b := range books {
		book := b.(map[string]interface{})
		assert.NotEmpty(t, book["title"])
		assert.Nil(t, book["reviews"])
	}
}

func TestQuery_MalformedIDIsValidationError(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `{ author(id: "abc") { firstname } }`, nil)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, map[string]interface{}{"code": "VALIDATION"}, result.Errors[0].Extensions)
}

func TestMutation_CreateAuthor(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `mutation {
		createAuthor(input: {firstname: "Octavia", lastname: "Butler"}) {
			id
			firstname
			books { title }
		}
	}`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	created := data["createAuthor"].(map[string]interface{})
	assert.Equal(t, "3", created["id"])
	assert.Empty(t, created["books"].([]interface{}))

	// The books edge of the new author was primed by the mutation; no store
	// round trip may happen for it.
	assert.Zero(t, env.books.AuthorBulkFetches)
}

func TestMutation_CreateBookForAbsentAuthor(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `mutation {
		createBook(input: {authorId: "999", title: "Orphan"}) { id }
	}`, nil)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, map[string]interface{}{"code": "NOT_FOUND"}, result.Errors[0].Extensions)
	assert.Equal(t, 3, env.books.Len())
}

func TestMutation_CreateReviewOutOfRangeRating(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `mutation {
		createReview(bookId: "1", reviewerName: "Sam", rating: 6, comment: "too high") { id }
	}`, nil)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, map[string]interface{}{"code": "VALIDATION"}, result.Errors[0].Extensions)
	assert.Equal(t, 2, env.reviews.Len())
}

func TestMutation_CreateReview(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `mutation {
		createReview(bookId: "3", reviewerName: "Marta", rating: 5, comment: "brilliant") {
			id
			book { title }
		}
	}`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	created := data["createReview"].(map[string]interface{})
	assert.Equal(t, "3", created["id"])
	assert.Equal(t, "Ficciones", created["book"].(map[string]interface{})["title"])
}

func TestMutation_DeleteAuthorCascades(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `mutation { deleteAuthor(id: "1") }`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	assert.Equal(t, true, data["deleteAuthor"])
	assert.Equal(t, 1, env.authors.Len())
	assert.Equal(t, 1, env.books.Len())
	assert.Equal(t, 0, env.reviews.Len())
}

func TestMutation_DeleteAbsentAuthorReturnsFalse(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `mutation { deleteAuthor(id: "999") }`, nil)
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	assert.Equal(t, false, data["deleteAuthor"])
	assert.Equal(t, 2, env.authors.Len())
}

func TestMutation_WithVariables(t *testing.T) {
	env := setupGraphTest(t)

	result := env.exec(t, `mutation CreateBook($input: CreateBookInput!) {
		createBook(input: $input) { id title authorId }
	}`, map[string]any{
		"input": map[string]any{
			"authorId": "2",
			"title":    "El Aleph",
		},
	})
	require.Empty(t, result.Errors)

	data := result.Data.(map[string]interface{})
	created := data["createBook"].(map[string]interface{})
	assert.Equal(t, "4", created["id"])
	assert.Equal(t, "2", created["authorId"])
}
