package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

type (
	// EntryType is the direction of money: income adds to the balance, expense subtracts.
	EntryType string

	Category struct {
		ID   string
		Name string
		Type EntryType
	}

	// Transaction stores its category by name. It is a copy of the label,
	// not a reference, so renaming or deleting a category leaves it untouched.
	Transaction struct {
		ID          string
		Description string
		Amount      decimal.Decimal
		Type        EntryType
		Category    string
		Date        time.Time
	}

	// TransactionInput is what callers provide to create a transaction.
	// A zero Date means "now".
	TransactionInput struct {
		Description string
		Amount      decimal.Decimal
		Type        EntryType
		Category    string
		Date        time.Time
	}

	// TransactionPatch carries the fields to replace on update; nil means unchanged.
	TransactionPatch struct {
		Description *string
		Amount      *decimal.Decimal
		Type        *EntryType
		Category    *string
		Date        *time.Time
	}
)

// EntryTypes lists the valid entry types.
func EntryTypes() []EntryType {
	return []EntryType{Income, Expense}
}

func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t EntryType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (t EntryType) String() string {
	return string(t)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return c.Type.Validate()
}

// Amount precision limits. They match the NUMERIC(20, 6) column of the
// Postgres schema so every backend accepts the same amounts.
const (
	MaxAmountScale         = 6
	MaxAmountIntegerDigits = 14
)

// ValidateAmount rejects zero and negative amounts; the sign lives in the type.
// Amounts with more than MaxAmountScale decimal places or more than
// MaxAmountIntegerDigits integer digits are rejected as well.
func ValidateAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return ErrInvalidAmount
	}
	exp := int64(a.Exponent())
	if exp < -MaxAmountScale {
		return ErrInvalidAmount
	}
	// Checked on the exponent before counting digits, so huge exponents stay cheap.
	if exp > MaxAmountIntegerDigits {
		return ErrInvalidAmount
	}
	if int64(len(a.Coefficient().String()))+exp > MaxAmountIntegerDigits {
		return ErrInvalidAmount
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}
	return in.Type.Validate()
}

// NewTransaction builds a transaction from validated input. The id is assigned by the store.
func NewTransaction(in TransactionInput, now time.Time) Transaction {
	date := in.Date
	if date.IsZero() {
		date = now
	}
	return Transaction{
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		Date:        date.UTC(),
	}
}

func (t Transaction) Validate() error {
	return TransactionInput{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
	}.Validate()
}

// Signed returns the amount with the direction applied.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Type == nil && p.Category == nil && p.Date == nil
}

// Validate checks only the fields that are present.
func (p TransactionPatch) Validate() error {
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		return ErrEmptyDescription
	}
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Type != nil {
		if err := p.Type.Validate(); err != nil {
			return err
		}
	}
	if p.Date != nil && p.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Apply returns t with the patch fields replaced.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = p.Date.UTC()
	}
	return t
}
