package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
	"finanzas/internal/seed"
)

// Store keeps categories and transactions in process memory. A single mutex
// serialises writers, so the (name, type) check and the insert are atomic.
type Store struct {
	mu           sync.Mutex
	categories   map[string]core.Category
	transactions map[string]core.Transaction
	now          func() time.Time
}

func New() *Store {
	return &Store{
		categories:   make(map[string]core.Category),
		transactions: make(map[string]core.Transaction),
		now:          time.Now,
	}
}

// NewFromFiles returns a store seeded from base/seed_categories.txt, falling
// back to the default categories when the file is missing or empty.
func NewFromFiles(base string) *Store {
	s := New()
	cats := seed.ReadCategoryFile(base)
	if len(cats) == 0 {
		cats = seed.DefaultCategories()
	}
	for _, c := range cats {
		if c.Validate() != nil {
			continue
		}
		_, _ = s.CreateCategory(context.Background(), c.Name, c.Type)
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) ListCategories(_ context.Context, t core.EntryType) ([]core.Category, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.Type == t {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, name string, t core.EntryType) (core.Category, error) {
	c := core.Category{Name: name, Type: t}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Name == name && existing.Type == t {
			return core.Category{}, core.ErrDuplicateCategory
		}
	}
	c.ID = uuid.NewString()
	s.categories[c.ID] = c
	return c, nil
}

// UpdateCategory does not re-check (name, type) uniqueness against other categories.
func (s *Store) UpdateCategory(_ context.Context, id, name string, t core.EntryType) (core.Category, error) {
	c := core.Category{ID: id, Name: name, Type: t}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return core.Category{}, core.ErrCategoryNotFound
	}
	s.categories[id] = c
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.categories[id]
	delete(s.categories, id)
	return ok, nil
}

func (s *Store) ListTransactions(context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := core.NewTransaction(in, s.now())
	t.ID = uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	t = p.Apply(t)
	s.transactions[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.transactions[id]
	delete(s.transactions, id)
	return ok, nil
}
