package google

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "  ", "")
	require.Error(t, err)
	assert.Equal(t, "missing GOOGLE_SPREADSHEET_ID", err.Error())
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := New(context.Background(), "sheet-id", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", t.TempDir()+"/missing.json")

	_, err := New(context.Background(), "sheet-id", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestRowFor(t *testing.T) {
	tx := core.Transaction{
		ID:          "tx-1",
		Description: "Almuerzo",
		Amount:      decimal.RequireFromString("20.50"),
		Type:        core.Expense,
		Category:    "Comida",
		Date:        time.Date(2024, 1, 5, 13, 30, 0, 0, time.UTC),
	}

	row := rowFor(tx)
	require.Len(t, row, len(header))
	assert.Equal(t, []any{"tx-1", "2024-01-05T13:30:00Z", "Almuerzo", "expense", "Comida", 20.5}, row)
}

func TestFindRow(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"a"},
		{},
		{"b"},
	}

	assert.Equal(t, 2, findRow(values, "a"))
	assert.Equal(t, 4, findRow(values, "b"))
	assert.Equal(t, 0, findRow(values, "c"))
	assert.Equal(t, 0, findRow(nil, "a"))
}

func TestClient_RequiresService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: DefaultSheetName}
	ctx := context.Background()

	assert.ErrorIs(t, c.Upsert(ctx, core.Transaction{ID: "x"}), errNoService)
	assert.ErrorIs(t, c.Remove(ctx, "x"), errNoService)
	assert.ErrorIs(t, c.ReplaceAll(ctx, nil), errNoService)
}
