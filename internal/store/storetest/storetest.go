// Package storetest provides in-memory store implementations for tests.
//
// The fakes mirror the adapter contracts closely enough to exercise the
// loader engine and the mutation orchestrator: bulk fetches are counted so
// batching behavior is observable, and every failure point can be armed with
// an error to inject.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/bookgraphapp/bookgraph-server/internal/domain"
	"github.com/bookgraphapp/bookgraph-server/internal/store"
)

var (
	_ store.AuthorStore = (*AuthorStore)(nil)
	_ store.BookStore   = (*BookStore)(nil)
	_ store.ReviewStore = (*ReviewStore)(nil)
)

// AuthorStore is an in-memory store.AuthorStore.
type AuthorStore struct {
	mu     sync.Mutex
	rows   map[int64]*domain.Author
	nextID int64

	// BulkFetches counts AuthorsByIDs calls.
	BulkFetches int
	// LastKeys records the key set of the most recent bulk fetch.
	LastKeys []int64

	FailBulk   error
	FailCreate error
	FailDelete error
	FailExists error
}

// NewAuthorStore creates an empty in-memory author store.
func NewAuthorStore() *AuthorStore {
	return &AuthorStore{rows: make(map[int64]*domain.Author)}
}

// Add inserts a row directly, bypassing the store API.
func (s *AuthorStore) Add(a *domain.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := domain.ParseID(a.ID)
	s.rows[id] = a
	if id > s.nextID {
		s.nextID = id
	}
}

// Len reports the number of rows.
func (s *AuthorStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *AuthorStore) AuthorsByIDs(_ context.Context, ids []int64) ([]*domain.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BulkFetches++
	s.LastKeys = append([]int64(nil), ids...)
	if s.FailBulk != nil {
		return nil, s.FailBulk
	}
	var out []*domain.Author
	for _, id := range ids {
		if a, ok := s.rows[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AuthorStore) ListAuthors(_ context.Context) ([]*domain.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Author, 0, len(s.rows))
	for _, a := range s.rows {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *AuthorStore) AuthorExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailExists != nil {
		return false, s.FailExists
	}
	_, ok := s.rows[id]
	return ok, nil
}

func (s *AuthorStore) CreateAuthor(_ context.Context, a *domain.Author) (*domain.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return nil, s.FailCreate
	}
	created := *a
	s.nextID++
	created.ID = domain.FormatID(s.nextID)
	s.rows[s.nextID] = &created
	return &created, nil
}

func (s *AuthorStore) DeleteAuthor(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete != nil {
		return s.FailDelete
	}
	delete(s.rows, id)
	return nil
}

func (s *AuthorStore) UpsertAuthors(_ context.Context, authors []*domain.Author) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range authors {
		id, err := domain.ParseID(a.ID)
		if err != nil {
			return err
		}
		s.rows[id] = a
		if id > s.nextID {
			s.nextID = id
		}
	}
	return nil
}

func (s *AuthorStore) Close() error { return nil }

// BookStore is an in-memory store.BookStore. Transactions stage deletions and
// apply them on Commit, so rollback semantics are observable.
type BookStore struct {
	mu     sync.Mutex
	rows   map[int64]*domain.Book
	nextID int64

	// BulkFetches counts BooksByIDs calls; AuthorBulkFetches counts
	// BooksByAuthorIDs calls.
	BulkFetches       int
	AuthorBulkFetches int
	LastKeys          []int64

	FailBulk   error
	FailCreate error
	FailExists error
	FailBegin  error
	// FailCommit arms the next transaction's Commit.
	FailCommit error
	// FailTxDelete arms the next transaction's DeleteBooksByAuthor.
	FailTxDelete error

	// Rollbacks counts transaction rollbacks.
	Rollbacks int
}

// NewBookStore creates an empty in-memory book store.
func NewBookStore() *BookStore {
	return &BookStore{rows: make(map[int64]*domain.Book)}
}

// Add inserts a row directly, bypassing the store API.
func (s *BookStore) Add(b *domain.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := domain.ParseID(b.ID)
	s.rows[id] = b
	if id > s.nextID {
		s.nextID = id
	}
}

// Len reports the number of rows.
func (s *BookStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *BookStore) BooksByIDs(_ context.Context, ids []int64) ([]*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BulkFetches++
	s.LastKeys = append([]int64(nil), ids...)
	if s.FailBulk != nil {
		return nil, s.FailBulk
	}
	var out []*domain.Book
	for _, id := range ids {
		if b, ok := s.rows[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *BookStore) BooksByAuthorIDs(_ context.Context, authorIDs []int64) ([]*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AuthorBulkFetches++
	s.LastKeys = append([]int64(nil), authorIDs...)
	if s.FailBulk != nil {
		return nil, s.FailBulk
	}
	want := make(map[int64]bool, len(authorIDs))
	for _, id := range authorIDs {
		want[id] = true
	}
	var out []*domain.Book
	for _, b := range s.rows {
		authorID, _ := domain.ParseID(b.AuthorID)
		if want[authorID] {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *BookStore) ListBooks(_ context.Context) ([]*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Book, 0, len(s.rows))
	for _, b := range s.rows {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *BookStore) BookExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailExists != nil {
		return false, s.FailExists
	}
	_, ok := s.rows[id]
	return ok, nil
}

func (s *BookStore) BookIDsByAuthor(_ context.Context, authorID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, b := range s.rows {
		owner, _ := domain.ParseID(b.AuthorID)
		if owner == authorID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *BookStore) CreateBook(_ context.Context, b *domain.Book) (*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return nil, s.FailCreate
	}
	created := *b
	if b.ID == "" {
		s.nextID++
		created.ID = domain.FormatID(s.nextID)
	}
	id, err := domain.ParseID(created.ID)
	if err != nil {
		return nil, err
	}
	s.rows[id] = &created
	if id > s.nextID {
		s.nextID = id
	}
	return &created, nil
}

func (s *BookStore) Begin(_ context.Context) (store.BookTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailBegin != nil {
		return nil, s.FailBegin
	}
	return &bookTx{parent: s}, nil
}

func (s *BookStore) UpsertBooks(_ context.Context, books []*domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range books {
		id, err := domain.ParseID(b.ID)
		if err != nil {
			return err
		}
		s.rows[id] = b
		if id > s.nextID {
			s.nextID = id
		}
	}
	return nil
}

func (s *BookStore) Close() error { return nil }

type bookTx struct {
	parent *BookStore
	staged []int64
	done   bool
}

func (t *bookTx) DeleteBooksByAuthor(_ context.Context, authorID int64) (int64, error) {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	if t.parent.FailTxDelete != nil {
		return 0, t.parent.FailTxDelete
	}
	for id, b := range t.parent.rows {
		owner, _ := domain.ParseID(b.AuthorID)
		if owner == authorID {
			t.staged = append(t.staged, id)
		}
	}
	return int64(len(t.staged)), nil
}

func (t *bookTx) Commit(_ context.Context) error {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	if t.done {
		return nil
	}
	if t.parent.FailCommit != nil {
		t.done = true
		return t.parent.FailCommit
	}
	for _, id := range t.staged {
		delete(t.parent.rows, id)
	}
	t.done = true
	return nil
}

func (t *bookTx) Rollback(_ context.Context) error {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	if t.done {
		return nil
	}
	t.staged = nil
	t.done = true
	t.parent.Rollbacks++
	return nil
}

// ReviewStore is an in-memory store.ReviewStore.
type ReviewStore struct {
	mu     sync.Mutex
	rows   map[int64]*domain.Review
	nextID int64

	// BulkFetches counts ReviewsByBookIDs calls.
	BulkFetches int
	LastKeys    []int64
	// DeleteCalls counts DeleteReviewsByBookIDs calls.
	DeleteCalls int

	FailBulk   error
	FailCreate error
	FailDelete error
}

// NewReviewStore creates an empty in-memory review store.
func NewReviewStore() *ReviewStore {
	return &ReviewStore{rows: make(map[int64]*domain.Review)}
}

// Add inserts a row directly, bypassing the store API.
func (s *ReviewStore) Add(r *domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, _ := domain.ParseID(r.ID)
	s.rows[id] = r
	if id > s.nextID {
		s.nextID = id
	}
}

// Len reports the number of rows.
func (s *ReviewStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *ReviewStore) ReviewsByBookIDs(_ context.Context, bookIDs []int64) ([]*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BulkFetches++
	s.LastKeys = append([]int64(nil), bookIDs...)
	if s.FailBulk != nil {
		return nil, s.FailBulk
	}
	want := make(map[int64]bool, len(bookIDs))
	for _, id := range bookIDs {
		want[id] = true
	}
	var out []*domain.Review
	for _, r := range s.rows {
		bookID, _ := domain.ParseID(r.BookID)
		if want[bookID] {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ReviewStore) ReviewsByIDs(_ context.Context, ids []int64) ([]*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Review
	for _, id := range ids {
		if r, ok := s.rows[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *ReviewStore) ListReviews(_ context.Context) ([]*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Review, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *ReviewStore) CreateReview(_ context.Context, r *domain.Review) (*domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return nil, s.FailCreate
	}
	created := *r
	s.nextID++
	created.ID = domain.FormatID(s.nextID)
	s.rows[s.nextID] = &created
	return &created, nil
}

func (s *ReviewStore) DeleteReviewsByBookIDs(_ context.Context, bookIDs []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls++
	if s.FailDelete != nil {
		return 0, s.FailDelete
	}
	want := make(map[int64]bool, len(bookIDs))
	for _, id := range bookIDs {
		want[id] = true
	}
	var n int64
	for id, r := range s.rows {
		bookID, _ := domain.ParseID(r.BookID)
		if want[bookID] {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *ReviewStore) UpsertReviews(_ context.Context, reviews []*domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range reviews {
		id, err := domain.ParseID(r.ID)
		if err != nil {
			return err
		}
		s.rows[id] = r
		if id > s.nextID {
			s.nextID = id
		}
	}
	return nil
}

func (s *ReviewStore) Close() error { return nil }
