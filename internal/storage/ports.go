package storage

import (
	"context"

	"finanzas/internal/core"
)

// Ports implemented by every backend (memory, sqlite, postgres).
type (
	CategoryStore interface {
		// ListCategories returns categories of the given type ordered by name ascending.
		ListCategories(ctx context.Context, t core.EntryType) ([]core.Category, error)
		// CreateCategory fails with core.ErrConflict when (name, type) already exists.
		CreateCategory(ctx context.Context, name string, t core.EntryType) (core.Category, error)
		// UpdateCategory overwrites name and type; core.ErrNotFound when id is unknown.
		UpdateCategory(ctx context.Context, id, name string, t core.EntryType) (core.Category, error)
		// DeleteCategory is a no-op when id is unknown; deleted reports whether a row went away.
		DeleteCategory(ctx context.Context, id string) (deleted bool, err error)
	}

	TransactionStore interface {
		// ListTransactions returns all transactions, most recent date first.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
		// UpdateTransaction replaces the patch fields; core.ErrNotFound when id is unknown.
		UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error)
		// DeleteTransaction is a no-op when id is unknown; deleted reports whether a row went away.
		DeleteTransaction(ctx context.Context, id string) (deleted bool, err error)
	}

	// Store bundles both ports with lifecycle hooks.
	Store interface {
		CategoryStore
		TransactionStore
		Ping(ctx context.Context) error
		Close() error
	}
)
