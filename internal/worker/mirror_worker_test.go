package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage/memory"
)

type fakeMirror struct {
	mu       sync.Mutex
	rows     map[string]core.Transaction
	replaced int
	err      error
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{rows: map[string]core.Transaction{}}
}

func (m *fakeMirror) Upsert(_ context.Context, t core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows[t.ID] = t
	return nil
}

func (m *fakeMirror) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.rows, id)
	return nil
}

func (m *fakeMirror) ReplaceAll(_ context.Context, txs []core.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rows = map[string]core.Transaction{}
	for _, t := range txs {
		m.rows[t.ID] = t
	}
	m.replaced++
	return nil
}

func (m *fakeMirror) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaced
}

func addTx(t *testing.T, s *memory.Store, desc string) core.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(context.Background(), core.TransactionInput{
		Description: desc,
		Amount:      decimal.NewFromInt(10),
		Type:        core.Expense,
		Category:    "Transporte",
	})
	require.NoError(t, err)
	return tx
}

func TestMirrorWorker_HandleEvent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	mirror := newFakeMirror()
	w := NewMirrorWorker(store, mirror)

	tx := addTx(t, store, "Pasajes")

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionCreated, tx.ID)))
	assert.Equal(t, "Pasajes", mirror.rows[tx.ID].Description)

	desc := "Taxi"
	_, err := store.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Description: &desc})
	require.NoError(t, err)
	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionUpdated, tx.ID)))
	assert.Equal(t, "Taxi", mirror.rows[tx.ID].Description)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionDeleted, tx.ID)))
	assert.NotContains(t, mirror.rows, tx.ID)
}

func TestMirrorWorker_IgnoresCategoryEvents(t *testing.T) {
	mirror := newFakeMirror()
	mirror.err = errors.New("must not be called")
	w := NewMirrorWorker(memory.New(), mirror)

	assert.NoError(t, w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EntityCategory, amqp.ActionCreated, "c1")))
}

func TestMirrorWorker_MissingTransactionIsSkipped(t *testing.T) {
	mirror := newFakeMirror()
	w := NewMirrorWorker(memory.New(), mirror)

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionCreated, "gone"))
	assert.NoError(t, err)
	assert.Empty(t, mirror.rows)
}

func TestMirrorWorker_MirrorFailureIsReturned(t *testing.T) {
	store := memory.New()
	tx := addTx(t, store, "Pasajes")
	mirror := newFakeMirror()
	mirror.err = errors.New("quota exceeded")
	w := NewMirrorWorker(store, mirror)

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionCreated, tx.ID))
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestMirrorWorker_Reconcile(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	a := addTx(t, store, "Pasajes")
	b := addTx(t, store, "Almuerzo")

	mirror := newFakeMirror()
	mirror.rows["stale"] = core.Transaction{ID: "stale"}
	w := NewMirrorWorker(store, mirror)

	require.NoError(t, w.Reconcile(ctx))
	assert.Len(t, mirror.rows, 2)
	assert.Contains(t, mirror.rows, a.ID)
	assert.Contains(t, mirror.rows, b.ID)
}

func TestMirrorWorker_RunReconcilerStopsOnCancel(t *testing.T) {
	mirror := newFakeMirror()
	w := NewMirrorWorker(memory.New(), mirror)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.RunReconciler(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return mirror.count() > 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
