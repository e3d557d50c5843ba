package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, author_id, title, synopsis, isbn, publication_date`

// scanBook scans one books row into the canonical entity shape.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		id       int64
		authorID int64
		b        domain.Book
		synopsis sql.NullString
		isbn     sql.NullString
		pubDate  sql.NullTime
	)

	err := scanner.Scan(&id, &authorID, &b.Title, &synopsis, &isbn, &pubDate)
	if err != nil {
		return nil, err
	}

	b.ID = domain.FormatID(id)
	b.AuthorID = domain.FormatID(authorID)
	if synopsis.Valid {
		b.Synopsis = synopsis.String
	}
	if isbn.Valid {
		b.ISBN = isbn.String
	}
	if pubDate.Valid {
		b.PublicationDate = domain.FormatDate(pubDate.Time)
	}

	return &b, nil
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

func (s *Store) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// BooksByIDs bulk-fetches books by key set in a single query.
func (s *Store) BooksByIDs(ctx context.Context, ids []int64) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders(len(ids))+`)`,
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch books: %w", err)
	}
	return books, nil
}

// BooksByAuthorIDs bulk-fetches every book referencing any of the given
// authors in a single query.
func (s *Store) BooksByAuthorIDs(ctx context.Context, authorIDs []int64) ([]*domain.Book, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	books, err := s.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE author_id IN (`+placeholders(len(authorIDs))+`) ORDER BY id`,
		int64Args(authorIDs)...)
	if err != nil {
		return nil, fmt.Errorf("bulk fetch books by author: %w", err)
	}
	return books, nil
}

// ListBooks returns all books ordered by id.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// BookExists reports whether a book row exists.
func (s *Store) BookExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check book exists: %w", err)
	}
	return exists, nil
}

// BookIDsByAuthor enumerates the ids of every book referencing an author.
func (s *Store) BookIDsByAuthor(ctx context.Context, authorID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM books WHERE author_id = ? ORDER BY id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("enumerate books for author %d: %w", authorID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan book id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateBook inserts a book and returns the stored entity. With an empty b.ID
// the identifier is generated by the store.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) (*domain.Book, error) {
	authorID, err := domain.ParseID(b.AuthorID)
	if err != nil {
		return nil, err
	}

	created := *b
	if b.ID == "" {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO books (author_id, title, synopsis, isbn, publication_date)
			VALUES (?, ?, ?, ?, ?)`,
			authorID, b.Title, textArg(b.Synopsis), textArg(b.ISBN), dateArg(b.PublicationDate))
		if err != nil {
			return nil, fmt.Errorf("insert book: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert book: %w", err)
		}
		created.ID = domain.FormatID(id)
	} else {
		id, err := domain.ParseID(b.ID)
		if err != nil {
			return nil, err
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO books (id, author_id, title, synopsis, isbn, publication_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, authorID, b.Title, textArg(b.Synopsis), textArg(b.ISBN), dateArg(b.PublicationDate))
		if err != nil {
			return nil, fmt.Errorf("insert book %d: %w", id, err)
		}
	}
	return &created, nil
}

// Begin opens a transaction for the cascading-delete protocol.
func (s *Store) Begin(ctx context.Context) (store.BookTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin books transaction: %w", err)
	}
	return storeTx{tx: tx}, nil
}

// storeTx wraps a *sql.Tx as a store.BookTx.
type storeTx struct {
	tx *sql.Tx
}

// DeleteBooksByAuthor deletes every book referencing the author within the
// transaction.
func (t storeTx) DeleteBooksByAuthor(ctx context.Context, authorID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM books WHERE author_id = ?`, authorID)
	if err != nil {
		return 0, fmt.Errorf("delete books for author %d: %w", authorID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete books for author %d: %w", authorID, err)
	}
	return n, nil
}

// Commit commits the transaction.
func (t storeTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

// Rollback aborts the transaction. Safe to call after Commit.
func (t storeTx) Rollback(_ context.Context) error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

// UpsertBooks idempotently bulk-loads books with explicit ids.
func (s *Store) UpsertBooks(ctx context.Context, books []*domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert books: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, b := range books {
		id, err := domain.ParseID(b.ID)
		if err != nil {
			return err
		}
		authorID, err := domain.ParseID(b.AuthorID)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO books (id, author_id, title, synopsis, isbn, publication_date)
			VALUES (?, ?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				author_id = VALUES(author_id),
				title = VALUES(title),
				synopsis = VALUES(synopsis),
				isbn = VALUES(isbn),
				publication_date = VALUES(publication_date)`,
			id, authorID, b.Title, textArg(b.Synopsis), textArg(b.ISBN), dateArg(b.PublicationDate))
		if err != nil {
			return fmt.Errorf("upsert book %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}
