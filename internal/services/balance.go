package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// TransactionLister is the read side the calculator needs.
type TransactionLister interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
}

// BalanceCalculator derives the running balance from the full transaction set.
// Nothing is cached: every call re-reads the store.
type BalanceCalculator struct {
	transactions TransactionLister
}

func NewBalanceCalculator(transactions TransactionLister) *BalanceCalculator {
	return &BalanceCalculator{transactions: transactions}
}

// ComputeBalance returns income minus expense over all stored transactions.
func (b *BalanceCalculator) ComputeBalance(ctx context.Context) (decimal.Decimal, error) {
	txs, err := b.transactions.ListTransactions(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("compute balance: %w", err)
	}
	return core.Balance(txs), nil
}
