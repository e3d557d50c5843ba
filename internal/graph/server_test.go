package graph

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/service"
	"github.com/bookgraphapp/bookgraph-server/internal/store/storetest"
	"github.com/bookgraphapp/bookgraph-server/internal/validation"
)

// setupServerTest builds the full HTTP handler over in-memory stores.
func setupServerTest(t *testing.T) (*Server, *storetest.BookStore) {
	t.Helper()

	authors := storetest.NewAuthorStore()
	authors.Add(&domain.Author{ID: "1", Firstname: "Ursula", Lastname: "Le Guin", DateCreated: "2024-01-05"})

	books := storetest.NewBookStore()
	books.Add(&domain.Book{ID: "1", AuthorID: "1", Title: "A Wizard of Earthsea"})

	reviews := storetest.NewReviewStore()

	mutator := service.NewMutator(authors, books, reviews, validation.New(), slog.New(slog.DiscardHandler))
	resolver := NewResolver(authors, books, reviews, mutator)
	schema, err := resolver.BuildSchema()
	require.NoError(t, err)

	return NewServer(schema, authors, books, reviews, slog.New(slog.DiscardHandler)), books
}

func postGraphQL(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHandleGraphQL_Query(t *testing.T) {
	srv, _ := setupServerTest(t)

	w := postGraphQL(t, srv, `{"query": "{ book(id: \"1\") { title author { firstname } } }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		Data struct {
			Book struct {
				Title  string `json:"title"`
				Author struct {
					Firstname string `json:"firstname"`
				} `json:"author"`
			} `json:"book"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "A Wizard of Earthsea", result.Data.Book.Title)
	assert.Equal(t, "Ursula", result.Data.Book.Author.Firstname)
}

func TestHandleGraphQL_Variables(t *testing.T) {
	srv, books := setupServerTest(t)

	w := postGraphQL(t, srv, `{
		"query": "mutation CreateBook($input: CreateBookInput!) { createBook(input: $input) { id } }",
		"variables": {"input": {"authorId": "1", "title": "Tehanu"}}
	}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"errors"`)
	assert.Equal(t, 2, books.Len())
}

func TestHandleGraphQL_MalformedBody(t *testing.T) {
	srv, _ := setupServerTest(t)

	w := postGraphQL(t, srv, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGraphQL_MissingQuery(t *testing.T) {
	srv, _ := setupServerTest(t)

	w := postGraphQL(t, srv, `{"variables": {}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGraphQL_ErrorCarriesCode(t *testing.T) {
	srv, _ := setupServerTest(t)

	w := postGraphQL(t, srv, `{"query": "mutation { createBook(input: {authorId: \"999\", title: \"Orphan\"}) { id } }"}`)
	require.Equal(t, http.StatusOK, w.Code, "execution errors ride in the errors array, not the HTTP status")
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestHandleGraphQL_WrongMethod(t *testing.T) {
	srv, _ := setupServerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "not allowed")
}

func TestHealthCheck(t *testing.T) {
	srv, _ := setupServerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
