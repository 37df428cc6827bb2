package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useSQLite(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", filepath.Join(dir, "db", "finanzas.db"))
	t.Setenv("SEED_DIR", dir)
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateSeedAndInspect(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "migrate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Schema is up to date (sqlite)")

	out, err = run(t, "seed", "--samples")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Seeded 5 categories (0 already present), 3 transactions")

	out, err = run(t, "seed")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Seeded 0 categories (5 already present), 0 transactions")

	out, err = run(t, "balance")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1470.00")

	out, err = run(t, "categories", "list", "expense")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Comida")
	assert.Contains(t, out, "Transporte")
	assert.NotContains(t, out, "Salario")

	out, err = run(t, "transactions", "list")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pago mensual")
	assert.Contains(t, out, "-20.00")
}

func TestCategoriesAddAndRejects(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "categories", "add", "income", "Beca")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Created Beca")

	_, err = run(t, "categories", "add", "income", "Beca")
	require.Error(t, err)

	_, err = run(t, "categories", "list", "transfer")
	require.Error(t, err)

	_, err = run(t, "categories", "list")
	require.Error(t, err, "type argument is required")
}

func TestMigrateRejectsMemoryBackend(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_DIR", t.TempDir())

	_, err := run(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to migrate")
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	t.Setenv("DATA_BACKEND", "mongo")

	_, err := run(t, "balance")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid data backend")
}
