// Package di provides dependency injection configuration for the server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookgraphapp/bookgraph-server/internal/config"
	"github.com/bookgraphapp/bookgraph-server/internal/di/providers"
	"github.com/bookgraphapp/bookgraph-server/internal/logger"
	"github.com/bookgraphapp/bookgraph-server/internal/service"
	"github.com/bookgraphapp/bookgraph-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Store layer
	do.Provide(injector, providers.ProvideAuthorStore)
	do.Provide(injector, providers.ProvideBookStore)
	do.Provide(injector, providers.ProvideReviewStore)

	// Business services
	do.Provide(injector, providers.ProvideMutator)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.AuthorStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.BookStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ReviewStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.Mutator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
