package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryType(t *testing.T) {
	for _, s := range []string{"income", "expense"} {
		got, err := ParseEntryType(s)
		require.NoError(t, err)
		assert.Equal(t, s, got.String())
	}
	for _, s := range []string{"", "Income", "EXPENSE", "transfer"} {
		_, err := ParseEntryType(s)
		assert.ErrorIs(t, err, ErrInvalidArgument, "type %q", s)
	}
}

func TestCategoryValidate(t *testing.T) {
	assert.NoError(t, Category{Name: "Comida", Type: Expense}.Validate())
	assert.ErrorIs(t, Category{Name: "  ", Type: Expense}.Validate(), ErrEmptyName)
	assert.ErrorIs(t, Category{Name: "Comida", Type: "other"}.Validate(), ErrInvalidType)
}

func TestTransactionInputValidate(t *testing.T) {
	good := TransactionInput{
		Description: "Almuerzo",
		Amount:      decimal.NewFromInt(20),
		Type:        Expense,
		Category:    "Comida",
	}
	require.NoError(t, good.Validate())

	bads := []TransactionInput{
		{Description: "", Amount: decimal.NewFromInt(1), Type: Expense},
		{Description: "x", Amount: decimal.Zero, Type: Expense},
		{Description: "x", Amount: decimal.NewFromInt(-5), Type: Expense},
		{Description: "x", Amount: decimal.NewFromInt(1), Type: "gift"},
	}
	for i, in := range bads {
		err := in.Validate()
		assert.Truef(t, errors.Is(err, ErrInvalidArgument), "case %d: expected invalid argument, got %v", i, err)
	}
}

func TestNewTransactionDefaultsDate(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tx := NewTransaction(TransactionInput{Description: "x", Amount: decimal.NewFromInt(1), Type: Income}, now)
	assert.True(t, tx.Date.Equal(now))

	given := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	tx = NewTransaction(TransactionInput{Description: "x", Amount: decimal.NewFromInt(1), Type: Income, Date: given}, now)
	assert.True(t, tx.Date.Equal(given))
}

func TestTransactionPatch(t *testing.T) {
	base := Transaction{
		ID:          "a",
		Description: "Pasajes",
		Amount:      decimal.NewFromInt(10),
		Type:        Expense,
		Category:    "Transporte",
		Date:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	desc := "Taxi"
	amt := decimal.RequireFromString("12.5")
	p := TransactionPatch{Description: &desc, Amount: &amt}
	require.NoError(t, p.Validate())
	got := p.Apply(base)
	assert.Equal(t, "Taxi", got.Description)
	assert.True(t, got.Amount.Equal(amt))
	assert.Equal(t, base.Category, got.Category)
	assert.Equal(t, base.ID, got.ID)

	assert.True(t, TransactionPatch{}.IsEmpty())
	assert.False(t, p.IsEmpty())

	empty := ""
	assert.ErrorIs(t, TransactionPatch{Description: &empty}.Validate(), ErrEmptyDescription)
	neg := decimal.NewFromInt(-1)
	assert.ErrorIs(t, TransactionPatch{Amount: &neg}.Validate(), ErrInvalidAmount)
	bad := EntryType("x")
	assert.ErrorIs(t, TransactionPatch{Type: &bad}.Validate(), ErrInvalidType)
	var zero time.Time
	assert.ErrorIs(t, TransactionPatch{Date: &zero}.Validate(), ErrInvalidDate)
}

func TestValidateAmountBounds(t *testing.T) {
	valid := []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.New(15, 2),
		decimal.New(1, -MaxAmountScale),
		decimal.RequireFromString("99999999999999.999999"),
	}
	for _, a := range valid {
		assert.NoErrorf(t, ValidateAmount(a), "%s", a)
	}

	invalid := []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(-1),
		decimal.New(1, -MaxAmountScale-1),
		decimal.New(1, MaxAmountIntegerDigits),
		decimal.New(1, 400000000),
		decimal.New(1, -400000000),
	}
	for _, a := range invalid {
		assert.ErrorIs(t, ValidateAmount(a), ErrInvalidAmount)
	}
}

func TestUnavailableWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Unavailable("insert category", cause)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, Unavailable("noop", nil))
}
