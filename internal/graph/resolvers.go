package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/errors"
)

// Top-level queries.

func (r *Resolver) resolveAuthor(p graphql.ResolveParams) (interface{}, error) {
	id, err := idArgOf(p, "id")
	if err != nil {
		return nil, err
	}
	l, err := loadersFrom(p)
	if err != nil {
		return nil, err
	}
	thunk := l.AuthorByID.Load(p.Context, id)
	return func() (interface{}, error) {
		a, err := thunk()
		if err != nil {
			return nil, err
		}
		if a == nil {
			// Absent entity is null data, not an error.
			return nil, nil
		}
		return a, nil
	}, nil
}

func (r *Resolver) resolveAuthors(p graphql.ResolveParams) (interface{}, error) {
	authors, err := r.authors.ListAuthors(p.Context)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list authors")
	}
	if authors == nil {
		authors = []*domain.Author{}
	}
	return authors, nil
}

func (r *Resolver) resolveBook(p graphql.ResolveParams) (interface{}, error) {
	id, err := idArgOf(p, "id")
	if err != nil {
		return nil, err
	}
	l, err := loadersFrom(p)
	if err != nil {
		return nil, err
	}
	thunk := l.BookByID.Load(p.Context, id)
	return func() (interface{}, error) {
		b, err := thunk()
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, nil
		}
		return b, nil
	}, nil
}

func (r *Resolver) resolveBooks(p graphql.ResolveParams) (interface{}, error) {
	books, err := r.books.ListBooks(p.Context)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list books")
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

func (r *Resolver) resolveReview(p graphql.ResolveParams) (interface{}, error) {
	id, err := idArgOf(p, "id")
	if err != nil {
		return nil, err
	}
	reviews, err := r.reviews.ReviewsByIDs(p.Context, []int64{id})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "fetch review")
	}
	if len(reviews) == 0 {
		return nil, nil
	}
	return reviews[0], nil
}

func (r *Resolver) resolveReviews(p graphql.ResolveParams) (interface{}, error) {
	reviews, err := r.reviews.ListReviews(p.Context)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list reviews")
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviews, nil
}

// Relationship fields. Each returns a thunk over a loader so sibling fields
// in the same execution tick batch into one bulk fetch.

func resolveAuthorBooks(p graphql.ResolveParams) (interface{}, error) {
	a, ok := p.Source.(*domain.Author)
	if !ok {
		return nil, errors.Internal("books field resolved against a non-author source")
	}
	id, err := domain.ParseID(a.ID)
	if err != nil {
		return nil, err
	}
	l, err := loadersFrom(p)
	if err != nil {
		return nil, err
	}
	thunk := l.BooksByAuthorID.Load(p.Context, id)
	return func() (interface{}, error) {
		return thunk()
	}, nil
}

func resolveBookAuthor(p graphql.ResolveParams) (interface{}, error) {
	b, ok := p.Source.(*domain.Book)
	if !ok {
		return nil, errors.Internal("author field resolved against a non-book source")
	}
	authorID, err := domain.ParseID(b.AuthorID)
	if err != nil {
		return nil, err
	}
	l, err := loadersFrom(p)
	if err != nil {
		return nil, err
	}
	thunk := l.AuthorByID.Load(p.Context, authorID)
	return func() (interface{}, error) {
		a, err := thunk()
		if err != nil {
			return nil, err
		}
		if a == nil {
			// Dangling reference: nothing enforces the edge at the
			// database level, so surface null rather than an error.
			return nil, nil
		}
		return a, nil
	}, nil
}

func resolveBookReviews(p graphql.ResolveParams) (interface{}, error) {
	b, ok := p.Source.(*domain.Book)
	if !ok {
		return nil, errors.Internal("reviews field resolved against a non-book source")
	}
	id, err := domain.ParseID(b.ID)
	if err != nil {
		return nil, err
	}
	l, err := loadersFrom(p)
	if err != nil {
		return nil, err
	}
	thunk := l.ReviewsByBookID.Load(p.Context, id)
	return func() (interface{}, error) {
		return thunk()
	}, nil
}

func resolveReviewBook(p graphql.ResolveParams) (interface{}, error) {
	rev, ok := p.Source.(*domain.Review)
	if !ok {
		return nil, errors.Internal("book field resolved against a non-review source")
	}
	bookID, err := domain.ParseID(rev.BookID)
	if err != nil {
		return nil, err
	}
	l, err := loadersFrom(p)
	if err != nil {
		return nil, err
	}
	thunk := l.BookByID.Load(p.Context, bookID)
	return func() (interface{}, error) {
		b, err := thunk()
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, nil
		}
		return b, nil
	}, nil
}

// Mutations delegate to the orchestrator; resolvers only decode arguments.

func (r *Resolver) resolveCreateAuthor(p graphql.ResolveParams) (interface{}, error) {
	input, ok := p.Args["input"].(map[string]interface{})
	if !ok {
		return nil, errors.Validation("input is required")
	}
	in := domain.CreateAuthorInput{
		Firstname:     stringArg(input, "firstname"),
		Lastname:      stringArg(input, "lastname"),
		Birthdate:     stringArg(input, "birthdate"),
		Deathdate:     stringArg(input, "deathdate"),
		FavoriteColor: stringArg(input, "favoriteColor"),
		Bio:           stringArg(input, "bio"),
		Nationality:   stringArg(input, "nationality"),
		DateCreated:   stringArg(input, "dateCreated"),
	}
	return r.mutator.CreateAuthor(p.Context, in)
}

func (r *Resolver) resolveCreateBook(p graphql.ResolveParams) (interface{}, error) {
	input, ok := p.Args["input"].(map[string]interface{})
	if !ok {
		return nil, errors.Validation("input is required")
	}
	in := domain.CreateBookInput{
		ID:              stringArg(input, "id"),
		AuthorID:        stringArg(input, "authorId"),
		Title:           stringArg(input, "title"),
		Synopsis:        stringArg(input, "synopsis"),
		ISBN:            stringArg(input, "isbn"),
		PublicationDate: stringArg(input, "publicationDate"),
	}
	return r.mutator.CreateBook(p.Context, in)
}

func (r *Resolver) resolveCreateReview(p graphql.ResolveParams) (interface{}, error) {
	rating, _ := p.Args["rating"].(int)
	in := domain.CreateReviewInput{
		BookID:       stringArg(p.Args, "bookId"),
		ReviewerName: stringArg(p.Args, "reviewerName"),
		Rating:       rating,
		Comment:      stringArg(p.Args, "comment"),
	}
	return r.mutator.CreateReview(p.Context, in)
}

func (r *Resolver) resolveDeleteAuthor(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	return r.mutator.DeleteAuthor(p.Context, id)
}

func stringArg(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
