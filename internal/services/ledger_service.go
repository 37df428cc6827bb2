package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
	Close() error
}

// LedgerService validates requests and orchestrates the category and
// transaction stores. Stores re-validate what they receive.
type LedgerService struct {
	categories   storage.CategoryStore
	transactions storage.TransactionStore
	balance      *BalanceCalculator
	publisher    EventPublisher
	closers      []func() error
}

// Option configures optional collaborators of a LedgerService.
type Option func(*LedgerService)

// WithPublisher makes the service publish a LedgerEvent after every mutation.
func WithPublisher(p EventPublisher) Option {
	return func(s *LedgerService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithCloser registers a cleanup run by Close, e.g. the store's Close.
func WithCloser(fn func() error) Option {
	return func(s *LedgerService) {
		if fn != nil {
			s.closers = append(s.closers, fn)
		}
	}
}

func NewLedgerService(categories storage.CategoryStore, transactions storage.TransactionStore, opts ...Option) *LedgerService {
	s := &LedgerService{
		categories:   categories,
		transactions: transactions,
		balance:      NewBalanceCalculator(transactions),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTransaction creates a transaction; a zero Date becomes the creation time.
func (s *LedgerService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t, err := s.transactions.CreateTransaction(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionCreated, t.ID)
	return t, nil
}

// EditTransaction replaces the fields present in the patch.
func (s *LedgerService) EditTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return core.Transaction{}, core.ErrEmptyID
	}
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t, err := s.transactions.UpdateTransaction(ctx, id, p)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("edit transaction %s: %w", id, err)
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionUpdated, t.ID)
	return t, nil
}

// RemoveTransaction deletes by id. Unknown ids are not an error and publish nothing.
func (s *LedgerService) RemoveTransaction(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrEmptyID
	}
	deleted, err := s.transactions.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("remove transaction %s: %w", id, err)
	}
	if deleted {
		s.publish(ctx, amqp.EntityTransaction, amqp.ActionDeleted, id)
	}
	return nil
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return core.Transaction{}, core.ErrEmptyID
	}
	return s.transactions.GetTransaction(ctx, id)
}

// GetBalance is a point-in-time read; concurrent writers may not be reflected.
func (s *LedgerService) GetBalance(ctx context.Context) (decimal.Decimal, error) {
	return s.balance.ComputeBalance(ctx)
}

func (s *LedgerService) ListCategories(ctx context.Context, typ string) ([]core.Category, error) {
	t, err := core.ParseEntryType(typ)
	if err != nil {
		return nil, err
	}
	cats, err := s.categories.ListCategories(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *LedgerService) AddCategory(ctx context.Context, name, typ string) (core.Category, error) {
	t, err := core.ParseEntryType(typ)
	if err != nil {
		return core.Category{}, err
	}
	if strings.TrimSpace(name) == "" {
		return core.Category{}, core.ErrEmptyName
	}
	c, err := s.categories.CreateCategory(ctx, name, t)
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.publish(ctx, amqp.EntityCategory, amqp.ActionCreated, c.ID)
	return c, nil
}

// EditCategory renames or retypes a category. Transactions keep their copy of
// the old name.
func (s *LedgerService) EditCategory(ctx context.Context, id, name, typ string) (core.Category, error) {
	if strings.TrimSpace(id) == "" {
		return core.Category{}, core.ErrEmptyID
	}
	t, err := core.ParseEntryType(typ)
	if err != nil {
		return core.Category{}, err
	}
	if strings.TrimSpace(name) == "" {
		return core.Category{}, core.ErrEmptyName
	}
	c, err := s.categories.UpdateCategory(ctx, id, name, t)
	if err != nil {
		return core.Category{}, fmt.Errorf("edit category %s: %w", id, err)
	}
	s.publish(ctx, amqp.EntityCategory, amqp.ActionUpdated, c.ID)
	return c, nil
}

// RemoveCategory deletes by id. Unknown ids are not an error and publish nothing.
func (s *LedgerService) RemoveCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return core.ErrEmptyID
	}
	deleted, err := s.categories.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("remove category %s: %w", id, err)
	}
	if deleted {
		s.publish(ctx, amqp.EntityCategory, amqp.ActionDeleted, id)
	}
	return nil
}

// publish never fails the caller: the change is already persisted.
func (s *LedgerService) publish(ctx context.Context, entity amqp.Entity, action amqp.Action, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, amqp.NewLedgerEvent(entity, action, id)); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"component", "ledger_service",
			"entity", entity,
			"action", action,
			"id", id,
			"error", err)
	}
}

// Close releases the publisher and any registered closers.
func (s *LedgerService) Close() error {
	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
