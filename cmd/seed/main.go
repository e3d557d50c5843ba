// Package main provides a tool to load the reference dataset into the three
// stores.
//
// Seeding is idempotent; running it twice converges on the same state.
//
// Usage:
//
//	go run ./cmd/seed                     # embedded reference dataset
//	go run ./cmd/seed --dataset my.json   # custom dataset
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/bookgraphapp/bookgraph-server/internal/config"
	"github.com/bookgraphapp/bookgraph-server/internal/logger"
	"github.com/bookgraphapp/bookgraph-server/internal/seed"
	"github.com/bookgraphapp/bookgraph-server/internal/store/mysql"
	"github.com/bookgraphapp/bookgraph-server/internal/store/postgres"
	"github.com/bookgraphapp/bookgraph-server/internal/store/sqlite"
)

var datasetPath = flag.String("dataset", "", "Path to a dataset JSON file (default: embedded reference dataset)")

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	dataset, err := seed.Load(*datasetPath)
	if err != nil {
		log.Fatal("Failed to load dataset", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	authors, err := postgres.Open(ctx, postgres.Config{
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
		log.Fatal("Failed to open author store", "error", err)
	}
	defer authors.Close()

	books, err := mysql.Open(ctx, mysql.Config{
		Host:         cfg.MySQL.Host,
		Port:         cfg.MySQL.Port,
		User:         cfg.MySQL.User,
		Password:     cfg.MySQL.Password,
		Database:     cfg.MySQL.Database,
		MaxOpenConns: cfg.MySQL.MaxOpenConns,
		MaxIdleConns: cfg.MySQL.MaxIdleConns,
	}, log.Logger)
	if err != nil {
		log.Fatal("Failed to open book store", "error", err)
	}
	defer books.Close()

	reviews, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path}, log.Logger)
	if err != nil {
		log.Fatal("Failed to open review store", "error", err)
	}
	defer reviews.Close()

	seeder := seed.New(authors, books, reviews, log.Logger)
	if err := seeder.Run(ctx, dataset); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}

	log.Info("Seeding complete",
		"authors", len(dataset.Authors),
		"books", len(dataset.Books),
		"reviews", len(dataset.Reviews))
}
