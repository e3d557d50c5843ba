package graph

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/bookgraphapp/bookgraph-server/internal/http/response"
	"github.com/bookgraphapp/bookgraph-server/internal/loader"
	"github.com/bookgraphapp/bookgraph-server/internal/store"
)

// Server holds dependencies for the GraphQL HTTP endpoint.
type Server struct {
	schema  graphql.Schema
	authors store.AuthorStore
	books   store.BookStore
	reviews store.ReviewStore
	router  *chi.Mux
	logger  *slog.Logger
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(schema graphql.Schema, authors store.AuthorStore, books store.BookStore, reviews store.ReviewStore, logger *slog.Logger) *Server {
	s := &Server{
		schema:  schema,
		authors: authors,
		books:   books,
		reviews: reviews,
		router:  chi.NewRouter(),
		logger:  logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(s.requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.With(s.withLoaders).Post("/graphql", s.handleGraphQL)
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w, r.Method+" is not allowed", s.logger)
	})
}

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// requestID assigns each request a stable identifier for log correlation,
// honoring one supplied by the caller.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestIDFrom extracts the request identifier, empty when absent.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// withLoaders attaches a fresh loader set to the request context. Loader
// caches live exactly as long as the request; nothing batches or caches
// across requests.
func (s *Server) withLoaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := loader.NewContext(r.Context(), loader.New(s.authors, s.books, s.reviews))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// graphqlRequest is the standard GraphQL-over-HTTP POST body.
type graphqlRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// handleGraphQL executes one GraphQL request. Execution errors are carried in
// the standard errors array of the result; only a malformed request body gets
// an HTTP-level error.
func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if req.Query == "" {
		response.BadRequest(w, "query is required", s.logger)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	if len(result.Errors) > 0 {
		s.logger.WarnContext(r.Context(), "graphql request finished with errors",
			slog.String("request_id", requestIDFrom(r.Context())),
			slog.Int("error_count", len(result.Errors)),
			slog.String("first_error", result.Errors[0].Message))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.MarshalWrite(w, result); err != nil {
		s.logger.ErrorContext(r.Context(), "encode graphql response", slog.Any("error", err))
	}
}

// handleHealthCheck reports liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]string{"status": "ok"}, s.logger)
}
