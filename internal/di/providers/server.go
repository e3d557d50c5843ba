package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookgraphapp/bookgraph-server/internal/config"
	"github.com/bookgraphapp/bookgraph-server/internal/graph"
	"github.com/bookgraphapp/bookgraph-server/internal/logger"
	"github.com/bookgraphapp/bookgraph-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the GraphQL HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	authors := do.MustInvoke[*AuthorStoreHandle](i)
	books := do.MustInvoke[*BookStoreHandle](i)
	reviews := do.MustInvoke[*ReviewStoreHandle](i)
	mutator := do.MustInvoke[*service.Mutator](i)

	resolver := graph.NewResolver(authors.Store, books.Store, reviews.Store, mutator)
	schema, err := resolver.BuildSchema()
	if err != nil {
		return nil, err
	}

	handler := graph.NewServer(schema, authors.Store, books.Store, reviews.Store, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
