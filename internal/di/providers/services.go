package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookgraphapp/bookgraph-server/internal/logger"
	"github.com/bookgraphapp/bookgraph-server/internal/service"
	"github.com/bookgraphapp/bookgraph-server/internal/validation"
)

// ProvideValidator provides the input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideMutator provides the mutation orchestrator.
func ProvideMutator(i do.Injector) (*service.Mutator, error) {
	authors := do.MustInvoke[*AuthorStoreHandle](i)
	books := do.MustInvoke[*BookStoreHandle](i)
	reviews := do.MustInvoke[*ReviewStoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMutator(authors.Store, books.Store, reviews.Store, v, log.Logger), nil
}
