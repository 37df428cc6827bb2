// Package seed holds the starter data a fresh ledger is initialised with.
package seed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
)

// CategoryFile is the file name looked up in a seed directory.
const CategoryFile = "seed_categories.txt"

// DefaultCategories returns the starter categories.
func DefaultCategories() []core.Category {
	return []core.Category{
		{Name: "Salario", Type: core.Income},
		{Name: "Venta", Type: core.Income},
		{Name: "Comida", Type: core.Expense},
		{Name: "Transporte", Type: core.Expense},
		{Name: "Educación", Type: core.Expense},
	}
}

// SampleTransactions returns example transactions; their date defaults to creation time.
func SampleTransactions() []core.TransactionInput {
	return []core.TransactionInput{
		{Description: "Pago mensual", Amount: decimal.NewFromInt(1500), Type: core.Income, Category: "Salario"},
		{Description: "Almuerzo", Amount: decimal.NewFromInt(20), Type: core.Expense, Category: "Comida"},
		{Description: "Pasajes", Amount: decimal.NewFromInt(10), Type: core.Expense, Category: "Transporte"},
	}
}

// ReadCategoryFile parses dir/seed_categories.txt. Each line is "<type>: <name>";
// blank lines and lines starting with '#' are skipped. A missing file yields nil.
func ReadCategoryFile(dir string) []core.Category {
	f, err := os.Open(filepath.Join(dir, CategoryFile))
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []core.Category
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		typ, name, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		c := core.Category{Name: strings.TrimSpace(name), Type: core.EntryType(strings.TrimSpace(typ))}
		if c.Validate() != nil {
			continue
		}
		key := string(c.Type) + "\x00" + c.Name
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Target is the subset of the ledger seeding needs.
type Target interface {
	AddCategory(ctx context.Context, name, typ string) (core.Category, error)
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
}

// Result counts what Apply created.
type Result struct {
	Categories   int
	Skipped      int
	Transactions int
}

// Apply creates the given categories, skipping those that already exist, and
// then the given transactions.
func Apply(ctx context.Context, dst Target, cats []core.Category, txs []core.TransactionInput) (Result, error) {
	var res Result
	for _, c := range cats {
		if _, err := dst.AddCategory(ctx, c.Name, string(c.Type)); err != nil {
			if errors.Is(err, core.ErrConflict) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		res.Categories++
	}
	for _, in := range txs {
		if _, err := dst.AddTransaction(ctx, in); err != nil {
			return res, fmt.Errorf("seed transaction %q: %w", in.Description, err)
		}
		res.Transactions++
	}
	return res, nil
}
