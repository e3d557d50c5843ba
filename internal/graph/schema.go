// Package graph exposes the aggregation layer as a GraphQL endpoint.
//
// Relationship fields resolve through the per-request batch loaders: each
// resolver returns a thunk, so sibling fields inside one execution tick share
// a single bulk fetch per edge instead of issuing one query per parent row.
package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/errors"
	"github.com/bookgraphapp/bookgraph-server/internal/loader"
	"github.com/bookgraphapp/bookgraph-server/internal/service"
	"github.com/bookgraphapp/bookgraph-server/internal/store"
)

// Resolver holds the dependencies GraphQL field resolvers reach for.
type Resolver struct {
	authors store.AuthorStore
	books   store.BookStore
	reviews store.ReviewStore
	mutator *service.Mutator
}

// NewResolver wires the resolver over the stores and the mutation orchestrator.
func NewResolver(authors store.AuthorStore, books store.BookStore, reviews store.ReviewStore, mutator *service.Mutator) *Resolver {
	return &Resolver{
		authors: authors,
		books:   books,
		reviews: reviews,
		mutator: mutator,
	}
}

// BuildSchema constructs the executable schema. Author/Book/Review reference
// each other, so the relationship fields are attached after all three object
// types exist.
func (r *Resolver) BuildSchema() (graphql.Schema, error) {
	authorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"firstname":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"lastname":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"birthdate":     &graphql.Field{Type: graphql.String},
			"deathdate":     &graphql.Field{Type: graphql.String},
			"favoriteColor": &graphql.Field{Type: graphql.String},
			"bio":           &graphql.Field{Type: graphql.String},
			"nationality":   &graphql.Field{Type: graphql.String},
			"dateCreated":   &graphql.Field{Type: graphql.String},
		},
	})

	bookType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Book",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"authorId":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"synopsis":        &graphql.Field{Type: graphql.String},
			"isbn":            &graphql.Field{Type: graphql.String},
			"publicationDate": &graphql.Field{Type: graphql.String},
		},
	})

	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"bookId":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"reviewerName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"rating":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"comment":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	// List fields stay nullable at the top level so a failing bulk fetch on
	// one edge nulls that field alone instead of non-null-propagating to the
	// root and wiping independent siblings. Elements stay non-null: a
	// successful resolve yields an empty collection, never a null entry.
	authorType.AddFieldConfig("books", &graphql.Field{
		Type:    graphql.NewList(graphql.NewNonNull(bookType)),
		Resolve: resolveAuthorBooks,
	})
	bookType.AddFieldConfig("author", &graphql.Field{
		Type:    authorType,
		Resolve: resolveBookAuthor,
	})
	bookType.AddFieldConfig("reviews", &graphql.Field{
		Type:    graphql.NewList(graphql.NewNonNull(reviewType)),
		Resolve: resolveBookReviews,
	})
	reviewType.AddFieldConfig("book", &graphql.Field{
		Type:    bookType,
		Resolve: resolveReviewBook,
	})

	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"author": &graphql.Field{
				Type:    authorType,
				Args:    idArg,
				Resolve: r.resolveAuthor,
			},
			"authors": &graphql.Field{
				Type:    graphql.NewList(graphql.NewNonNull(authorType)),
				Resolve: r.resolveAuthors,
			},
			"book": &graphql.Field{
				Type:    bookType,
				Args:    idArg,
				Resolve: r.resolveBook,
			},
			"books": &graphql.Field{
				Type:    graphql.NewList(graphql.NewNonNull(bookType)),
				Resolve: r.resolveBooks,
			},
			"review": &graphql.Field{
				Type:    reviewType,
				Args:    idArg,
				Resolve: r.resolveReview,
			},
			"reviews": &graphql.Field{
				Type:    graphql.NewList(graphql.NewNonNull(reviewType)),
				Resolve: r.resolveReviews,
			},
		},
	})

	createAuthorInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateAuthorInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"firstname":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"lastname":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"birthdate":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"deathdate":     &graphql.InputObjectFieldConfig{Type: graphql.String},
			"favoriteColor": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"bio":           &graphql.InputObjectFieldConfig{Type: graphql.String},
			"nationality":   &graphql.InputObjectFieldConfig{Type: graphql.String},
			"dateCreated":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	createBookInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateBookInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":              &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"authorId":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"title":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"synopsis":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"isbn":            &graphql.InputObjectFieldConfig{Type: graphql.String},
			"publicationDate": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createAuthor": &graphql.Field{
				Type: authorType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createAuthorInput)},
				},
				Resolve: r.resolveCreateAuthor,
			},
			"createBook": &graphql.Field{
				Type: bookType,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createBookInput)},
				},
				Resolve: r.resolveCreateBook,
			},
			"createReview": &graphql.Field{
				Type: reviewType,
				Args: graphql.FieldConfigArgument{
					"bookId":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"reviewerName": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"rating":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"comment":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.resolveCreateReview,
			},
			"deleteAuthor": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Args:    idArg,
				Resolve: r.resolveDeleteAuthor,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// loadersFrom pulls the request's loader set out of the resolve context.
// The handler attaches one per request; a missing set is a wiring bug.
func loadersFrom(p graphql.ResolveParams) (*loader.Loaders, error) {
	l := loader.FromContext(p.Context)
	if l == nil {
		return nil, errors.Internal("request has no loader set attached")
	}
	return l, nil
}

func idArgOf(p graphql.ResolveParams, name string) (int64, error) {
	raw, _ := p.Args[name].(string)
	return domain.ParseID(raw)
}
