package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
)

// reviewColumns is the ordered list of columns selected in review queries.
// Must match the scan order in scanReview.
const reviewColumns = `id, book_id, reviewer_name, rating, comment`

// scanReview scans one reviews row into the canonical entity shape.
// Rating is declared INTEGER in the schema, so the scan is strict.
func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var (
		id     int64
		bookID int64
		r      domain.Review
	)

	err := scanner.Scan(&id, &bookID, &r.ReviewerName, &r.Rating, &r.Comment)
	if err != nil {
		return nil, err
	}

	r.ID = domain.FormatID(id)
	r.BookID = domain.FormatID(bookID)
	return &r, nil
}

// placeholders renders n comma-separated ? markers for an IN clause.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// int64Args widens a key slice to driver arguments.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func (s *Store) queryReviews(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// ReviewsByBookIDs bulk-fetches every review referencing any of the given
// books in a single query.
func (s *Store) ReviewsByBookIDs(ctx context.Context, bookIDs []int64) ([]*domain.Review, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}
	reviews, err := s.queryReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id IN (`+placeholders(len(bookIDs))+`) ORDER BY id`,
		int64Args(bookIDs)...)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch reviews by book: %w", err)
	}
	return reviews, nil
}

// ReviewsByIDs bulk-fetches reviews by key set in a single query.
func (s *Store) ReviewsByIDs(ctx context.Context, ids []int64) ([]*domain.Review, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	reviews, err := s.queryReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch reviews: %w", err)
	}
	return reviews, nil
}

// ListReviews returns all reviews ordered by id.
func (s *Store) ListReviews(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// CreateReview inserts a review and returns the stored entity. With an empty
// r.ID the identifier is generated by the store.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) (*domain.Review, error) {
	bookID, err := domain.ParseID(r.BookID)
	if err != nil {
		return nil, err
	}

	created := *r
	if r.ID == "" {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO reviews (book_id, reviewer_name, rating, comment)
			VALUES (?, ?, ?, ?)`,
			bookID, r.ReviewerName, r.Rating, r.Comment)
		if err != nil {
			return nil, fmt.Errorf("insert review: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert review: %w", err)
		}
		created.ID = domain.FormatID(id)
	} else {
		id, err := domain.ParseID(r.ID)
		if err != nil {
			return nil, err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO reviews (id, book_id, reviewer_name, rating, comment)
			VALUES (?, ?, ?, ?, ?)`,
			id, bookID, r.ReviewerName, r.Rating, r.Comment)
		if err != nil {
			return nil, fmt.Errorf("insert review %d: %w", id, err)
		}
	}
	return &created, nil
}

// DeleteReviewsByBookIDs deletes every review referencing any of the given
// books in one statement.
func (s *Store) DeleteReviewsByBookIDs(ctx context.Context, bookIDs []int64) (int64, error) {
	if len(bookIDs) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE book_id IN (`+placeholders(len(bookIDs))+`)`,
		int64Args(bookIDs)...)
	if err != nil {
		return 0, fmt.Errorf("delete reviews for books: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete reviews for books: %w", err)
	}
	return n, nil
}

// UpsertReviews idempotently bulk-loads reviews with explicit ids.
func (s *Store) UpsertReviews(ctx context.Context, reviews []*domain.Review) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert reviews: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, r := range reviews {
		id, err := domain.ParseID(r.ID)
		if err != nil {
			return err
		}
		bookID, err := domain.ParseID(r.BookID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reviews (id, book_id, reviewer_name, rating, comment)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				book_id = excluded.book_id,
				reviewer_name = excluded.reviewer_name,
				rating = excluded.rating,
				comment = excluded.comment`,
			id, bookID, r.ReviewerName, r.Rating, r.Comment)
		if err != nil {
			return fmt.Errorf("upsert review %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
