package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookgraphapp/bookgraph-server/internal/config"
	"github.com/bookgraphapp/bookgraph-server/internal/logger"
	"github.com/bookgraphapp/bookgraph-server/internal/store/mysql"
	"github.com/bookgraphapp/bookgraph-server/internal/store/postgres"
	"github.com/bookgraphapp/bookgraph-server/internal/store/sqlite"
)

// AuthorStoreHandle wraps the PostgreSQL store with shutdown capability.
type AuthorStoreHandle struct {
	*postgres.Store
}

// Shutdown implements do.Shutdownable.
func (h *AuthorStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideAuthorStore provides the PostgreSQL-backed author store.
func ProvideAuthorStore(i do.Injector) (*AuthorStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	s, err := postgres.Open(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: int32(cfg.Postgres.MaxConns),
		MinConns: int32(cfg.Postgres.MinConns),
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Author store initialized", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	return &AuthorStoreHandle{Store: s}, nil
}

// BookStoreHandle wraps the MySQL store with shutdown capability.
type BookStoreHandle struct {
	*mysql.Store
}

// Shutdown implements do.Shutdownable.
func (h *BookStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideBookStore provides the MySQL-backed book store.
func ProvideBookStore(i do.Injector) (*BookStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	s, err := mysql.Open(ctx, mysql.Config{
		Host:         cfg.MySQL.Host,
		Port:         cfg.MySQL.Port,
		User:         cfg.MySQL.User,
		Password:     cfg.MySQL.Password,
		Database:     cfg.MySQL.Database,
		MaxOpenConns: cfg.MySQL.MaxOpenConns,
		MaxIdleConns: cfg.MySQL.MaxIdleConns,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Book store initialized", "host", cfg.MySQL.Host, "database", cfg.MySQL.Database)
	return &BookStoreHandle{Store: s}, nil
}

// ReviewStoreHandle wraps the SQLite store with shutdown capability.
type ReviewStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *ReviewStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideReviewStore provides the embedded SQLite review store.
func ProvideReviewStore(i do.Injector) (*ReviewStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	s, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path}, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Review store initialized", "path", cfg.SQLite.Path)
	return &ReviewStoreHandle{Store: s}, nil
}
