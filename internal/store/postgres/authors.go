package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
)

// authorColumns is the ordered list of columns selected in author queries.
// Must match the scan order in scanAuthor.
const authorColumns = `id, firstname, lastname, birthdate, deathdate, favorite_color, bio, nationality, date_created`

// resyncSequence aligns the id sequence with MAX(id) so that rows inserted
// with externally supplied identifiers (the seed path) cannot collide with
// the next generated identifier.
const resyncSequence = `SELECT setval(pg_get_serial_sequence('authors', 'id'), COALESCE((SELECT MAX(id) FROM authors), 0) + 1, false)`

// scanAuthor scans one authors row into the canonical entity shape.
// Identifiers are normalized to strings and dates to the 10-character form.
func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var (
		id            int64
		a             domain.Author
		birthdate     *time.Time
		deathdate     *time.Time
		favoriteColor *string
		bio           *string
		nationality   *string
		dateCreated   time.Time
	)

	err := scanner.Scan(
		&id,
		&a.Firstname,
		&a.Lastname,
		&birthdate,
		&deathdate,
		&favoriteColor,
		&bio,
		&nationality,
		&dateCreated,
	)
	if err != nil {
		return nil, err
	}

	a.ID = domain.FormatID(id)
	if birthdate != nil {
		a.Birthdate = domain.FormatDate(*birthdate)
	}
	if deathdate != nil {
		a.Deathdate = domain.FormatDate(*deathdate)
	}
	if favoriteColor != nil {
		a.FavoriteColor = *favoriteColor
	}
	if bio != nil {
		a.Bio = *bio
	}
	if nationality != nil {
		a.Nationality = *nationality
	}
	a.DateCreated = domain.FormatDate(dateCreated)

	return &a, nil
}

// dateArg converts a canonical date string to a DATE parameter, NULL when empty.
func dateArg(s string) any {
	if s == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil
	}
	return t
}

// textArg converts an optional string to a TEXT parameter, NULL when empty.
func textArg(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// AuthorsByIDs bulk-fetches authors by key set in a single query.
func (s *Store) AuthorsByIDs(ctx context.Context, ids []int64) ([]*domain.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch authors: %w", err)
	}
	defer rows.Close()

	authors := make([]*domain.Author, 0, len(ids))
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bulk fetch authors: %w", err)
	}
	return authors, nil
}

// ListAuthors returns all authors ordered by id.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+authorColumns+` FROM authors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	return authors, nil
}

// AuthorExists reports whether an author row exists.
func (s *Store) AuthorExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM authors WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check author exists: %w", err)
	}
	return exists, nil
}

// CreateAuthor inserts an author and returns the stored entity. With an empty
// a.ID the identifier is generated by the store; the sequence is
// resynchronized first in the same transaction.
func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) (*domain.Author, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create author: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var row interface{ Scan(dest ...any) error }
	if a.ID == "" {
		if _, err := tx.Exec(ctx, resyncSequence); err != nil {
			return nil, fmt.Errorf("resync author id sequence: %w", err)
		}
		row = tx.QueryRow(ctx, `
			INSERT INTO authors (firstname, lastname, birthdate, deathdate, favorite_color, bio, nationality, date_created)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+authorColumns,
			a.Firstname, a.Lastname,
			dateArg(a.Birthdate), dateArg(a.Deathdate),
			textArg(a.FavoriteColor), textArg(a.Bio), textArg(a.Nationality),
			dateArg(a.DateCreated))
	} else {
		id, err := domain.ParseID(a.ID)
		if err != nil {
			return nil, err
		}
		row = tx.QueryRow(ctx, `
			INSERT INTO authors (id, firstname, lastname, birthdate, deathdate, favorite_color, bio, nationality, date_created)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+authorColumns,
			id, a.Firstname, a.Lastname,
			dateArg(a.Birthdate), dateArg(a.Deathdate),
			textArg(a.FavoriteColor), textArg(a.Bio), textArg(a.Nationality),
			dateArg(a.DateCreated))
	}

	created, err := scanAuthor(row)
	if err != nil {
		return nil, fmt.Errorf("insert author: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create author: %w", err)
	}
	return created, nil
}

// DeleteAuthor removes an author row.
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete author %d: %w", id, err)
	}
	return nil
}

// UpsertAuthors idempotently bulk-loads authors with explicit ids, then
// resynchronizes the id sequence past the highest loaded identifier.
func (s *Store) UpsertAuthors(ctx context.Context, authors []*domain.Author) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert authors: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for _, a := range authors {
		id, err := domain.ParseID(a.ID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO authors (id, firstname, lastname, birthdate, deathdate, favorite_color, bio, nationality, date_created)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				firstname = EXCLUDED.firstname,
				lastname = EXCLUDED.lastname,
				birthdate = EXCLUDED.birthdate,
				deathdate = EXCLUDED.deathdate,
				favorite_color = EXCLUDED.favorite_color,
				bio = EXCLUDED.bio,
				nationality = EXCLUDED.nationality,
				date_created = EXCLUDED.date_created`,
			id, a.Firstname, a.Lastname,
			dateArg(a.Birthdate), dateArg(a.Deathdate),
			textArg(a.FavoriteColor), textArg(a.Bio), textArg(a.Nationality),
			dateArg(a.DateCreated))
		if err != nil {
			return fmt.Errorf("upsert author %s: %w", a.ID, err)
		}
	}

	if _, err := tx.Exec(ctx, resyncSequence); err != nil {
		return fmt.Errorf("resync author id sequence: %w", err)
	}
	return tx.Commit(ctx)
}
