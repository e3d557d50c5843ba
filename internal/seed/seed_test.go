package seed

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/store/storetest"
)

func TestLoad_EmbeddedDataset(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)

	assert.NotEmpty(t, d.Authors)
	assert.NotEmpty(t, d.Books)
	assert.NotEmpty(t, d.Reviews)
}

func TestValidate_RejectsDanglingBookReference(t *testing.T) {
	d := &Dataset{
		Authors: []*domain.Author{{ID: "1", Firstname: "A", Lastname: "B"}},
		Books:   []*domain.Book{{ID: "1", AuthorID: "99", Title: "Orphan"}},
	}
	assert.Error(t, d.Validate())
}

func TestValidate_RejectsDanglingReviewReference(t *testing.T) {
	d := &Dataset{
		Authors: []*domain.Author{{ID: "1", Firstname: "A", Lastname: "B"}},
		Books:   []*domain.Book{{ID: "1", AuthorID: "1", Title: "T"}},
		Reviews: []*domain.Review{{ID: "1", BookID: "99", ReviewerName: "R", Rating: 3, Comment: "c"}},
	}
	assert.Error(t, d.Validate())
}

func TestValidate_RejectsReviewMissingRequiredFields(t *testing.T) {
	d := &Dataset{
		Authors: []*domain.Author{{ID: "1", Firstname: "A", Lastname: "B"}},
		Books:   []*domain.Book{{ID: "1", AuthorID: "1", Title: "T"}},
		Reviews: []*domain.Review{{ID: "1", BookID: "1", Rating: 3, Comment: "c"}},
	}
	assert.Error(t, d.Validate(), "missing reviewerName")

	d.Reviews = []*domain.Review{{ID: "1", BookID: "1", ReviewerName: "R", Rating: 3}}
	assert.Error(t, d.Validate(), "missing comment")
}

func TestValidate_RejectsOutOfRangeRating(t *testing.T) {
	d := &Dataset{
		Authors: []*domain.Author{{ID: "1", Firstname: "A", Lastname: "B"}},
		Books:   []*domain.Book{{ID: "1", AuthorID: "1", Title: "T"}},
		Reviews: []*domain.Review{{ID: "1", BookID: "1", ReviewerName: "R", Rating: 0, Comment: "c"}},
	}
	assert.Error(t, d.Validate())
}

func TestValidate_RejectsDuplicateIDs(t *testing.T) {
	d := &Dataset{
		Authors: []*domain.Author{
			{ID: "1", Firstname: "A", Lastname: "B"},
			{ID: "1", Firstname: "C", Lastname: "D"},
		},
	}
	assert.Error(t, d.Validate())
}

func TestValidate_NormalizesDatesAndDefaultsDateCreated(t *testing.T) {
	d := &Dataset{
		Authors: []*domain.Author{
			{ID: "1", Firstname: "A", Lastname: "B", Birthdate: "1929-10-21T00:00:00Z"},
		},
	}
	require.NoError(t, d.Validate())

	assert.Equal(t, "1929-10-21", d.Authors[0].Birthdate)
	assert.Equal(t, domain.Today(), d.Authors[0].DateCreated)
}

func TestRun_Idempotent(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)

	authors := storetest.NewAuthorStore()
	books := storetest.NewBookStore()
	reviews := storetest.NewReviewStore()
	seeder := New(authors, books, reviews, slog.New(slog.DiscardHandler))

	ctx := context.Background()
	require.NoError(t, seeder.Run(ctx, d))
	wantAuthors, wantBooks, wantReviews := authors.Len(), books.Len(), reviews.Len()

	// Second run converges on the same state.
	require.NoError(t, seeder.Run(ctx, d))
	assert.Equal(t, wantAuthors, authors.Len())
	assert.Equal(t, wantBooks, books.Len())
	assert.Equal(t, wantReviews, reviews.Len())
}
