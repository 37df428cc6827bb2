package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
)

// Mirror is a secondary copy of the transaction ledger, such as a spreadsheet.
type Mirror interface {
	Upsert(ctx context.Context, t core.Transaction) error
	Remove(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, txs []core.Transaction) error
}

// TransactionReader is the store side the worker reads current state from.
type TransactionReader interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

// MirrorWorker keeps a Mirror in step with the ledger. Events give low-latency
// updates; Reconcile rewrites the mirror from the store and covers lost events.
type MirrorWorker struct {
	store  TransactionReader
	mirror Mirror
}

func NewMirrorWorker(store TransactionReader, mirror Mirror) *MirrorWorker {
	return &MirrorWorker{store: store, mirror: mirror}
}

// HandleEvent applies one ledger event. Category events are ignored.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if ev.Entity != amqp.EntityTransaction {
		return nil
	}

	slog.InfoContext(ctx, "Processing ledger event",
		"component", "mirror_worker",
		"action", ev.Action,
		"id", ev.ID)

	if ev.Action == amqp.ActionDeleted {
		if err := w.mirror.Remove(ctx, ev.ID); err != nil {
			return fmt.Errorf("remove %s from mirror: %w", ev.ID, err)
		}
		return nil
	}

	t, err := w.store.GetTransaction(ctx, ev.ID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted after the event was published; the delete event clears the row.
		slog.InfoContext(ctx, "Transaction gone before mirroring", "component", "mirror_worker", "id", ev.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %s: %w", ev.ID, err)
	}
	if err := w.mirror.Upsert(ctx, t); err != nil {
		return fmt.Errorf("upsert %s into mirror: %w", ev.ID, err)
	}
	return nil
}

// Reconcile rewrites the mirror from the full transaction list.
func (w *MirrorWorker) Reconcile(ctx context.Context) error {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	if err := w.mirror.ReplaceAll(ctx, txs); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	slog.InfoContext(ctx, "Mirror reconciled", "component", "mirror_worker", "transactions", len(txs))
	return nil
}

// RunReconciler calls Reconcile every interval until ctx is done. Failures are
// logged and retried on the next tick.
func (w *MirrorWorker) RunReconciler(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Reconcile(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic reconciliation failed", "component", "mirror_worker", "error", err)
			}
		}
	}
}
