package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"finanzas/internal/core"
)

// Dialect selects the SQL flavour of a SQLRepository.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	return string(d)
}

// SQLite stores timestamps as fixed-width UTC text so ORDER BY sorts chronologically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLRepository implements Store on top of database/sql for SQLite and Postgres.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

var _ Store = (*SQLRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database file and migrates it.
func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(SQLite, dbPath)
}

// NewPostgresRepository connects to databaseURL and migrates the schema.
func NewPostgresRepository(databaseURL string) (*SQLRepository, error) {
	return open(Postgres, databaseURL)
}

func open(dialect Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// One writer at a time avoids SQLITE_BUSY under concurrent requests.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dialect, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: dialect, now: time.Now}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return core.Unavailable("ping", r.db.PingContext(ctx))
}

// rebind rewrites '?' placeholders to '$n' for Postgres.
func (r *SQLRepository) rebind(query string) string {
	if r.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func (r *SQLRepository) timeArg(t time.Time) any {
	if r.dialect == SQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

func parseStoredTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return parseTimeText(x)
	case []byte:
		return parseTimeText(string(x))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value %T", v)
	}
}

func parseTimeText(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

// isUniqueViolation reports whether err comes from the (name, type) unique index.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// ListCategories implements CategoryStore
func (r *SQLRepository) ListCategories(ctx context.Context, t core.EntryType) ([]core.Category, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	order := "name ASC, id ASC"
	if r.dialect == Postgres {
		order = `name COLLATE "C" ASC, id ASC`
	}
	rows, err := r.db.QueryContext(ctx,
		r.rebind(`SELECT id, name, type FROM categories WHERE type = ? ORDER BY `+order), string(t))
	if err != nil {
		return nil, core.Unavailable("list categories", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ); err != nil {
			return nil, core.Unavailable("scan category", err)
		}
		c.Type = core.EntryType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Unavailable("list categories", err)
	}
	return out, nil
}

// CreateCategory implements CategoryStore. The unique index decides conflicts,
// so two concurrent creates of the same (name, type) cannot both succeed.
func (r *SQLRepository) CreateCategory(ctx context.Context, name string, t core.EntryType) (core.Category, error) {
	c := core.Category{ID: uuid.NewString(), Name: name, Type: t}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	_, err := r.db.ExecContext(ctx,
		r.rebind(`INSERT INTO categories (id, name, type) VALUES (?, ?, ?)`), c.ID, c.Name, string(c.Type))
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.ErrDuplicateCategory
		}
		return core.Category{}, core.Unavailable("insert category", err)
	}

	slog.DebugContext(ctx, "Category saved", "component", "storage", "id", c.ID, "name", c.Name, "type", c.Type)
	return c, nil
}

// UpdateCategory implements CategoryStore. Uniqueness is not re-checked here;
// the index still rejects an update that collides with another category.
func (r *SQLRepository) UpdateCategory(ctx context.Context, id, name string, t core.EntryType) (core.Category, error) {
	c := core.Category{ID: id, Name: name, Type: t}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	res, err := r.db.ExecContext(ctx,
		r.rebind(`UPDATE categories SET name = ?, type = ? WHERE id = ?`), c.Name, string(c.Type), c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.ErrDuplicateCategory
		}
		return core.Category{}, core.Unavailable("update category", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, core.Unavailable("update category", err)
	}
	if n == 0 {
		return core.Category{}, core.ErrCategoryNotFound
	}
	return c, nil
}

// DeleteCategory implements CategoryStore
func (r *SQLRepository) DeleteCategory(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return false, core.Unavailable("delete category", err)
	}
	return rowsDeleted(res, "delete category")
}

const transactionColumns = `id, description, amount, type, category, occurred_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		typ      string
		occurred any
	)
	if err := row.Scan(&t.ID, &t.Description, &t.Amount, &typ, &t.Category, &occurred); err != nil {
		return core.Transaction{}, err
	}
	date, err := parseStoredTime(occurred)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.EntryType(typ)
	t.Date = date
	return t, nil
}

// ListTransactions implements TransactionStore
func (r *SQLRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY occurred_at DESC, id ASC`)
	if err != nil {
		return nil, core.Unavailable("list transactions", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, core.Unavailable("scan transaction", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Unavailable("list transactions", err)
	}
	return out, nil
}

// GetTransaction implements TransactionStore
func (r *SQLRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return r.getTransaction(ctx, r.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLRepository) getTransaction(ctx context.Context, q querier, id string) (core.Transaction, error) {
	row := q.QueryRowContext(ctx,
		r.rebind(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`), id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, core.Unavailable("get transaction", err)
	}
	return t, nil
}

// CreateTransaction implements TransactionStore
func (r *SQLRepository) CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := core.NewTransaction(in, r.now())
	t.ID = uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		r.rebind(`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		t.ID, t.Description, t.Amount.String(), string(t.Type), t.Category, r.timeArg(t.Date))
	if err != nil {
		return core.Transaction{}, core.Unavailable("insert transaction", err)
	}

	slog.DebugContext(ctx, "Transaction saved",
		"component", "storage",
		"id", t.ID,
		"description", t.Description,
		"amount", t.Amount.String(),
		"type", t.Type)

	return t, nil
}

// UpdateTransaction implements TransactionStore. The read and the write run in
// one database transaction.
func (r *SQLRepository) UpdateTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error) {
	if err := p.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, core.Unavailable("begin update", err)
	}
	defer tx.Rollback()

	current, err := r.getTransaction(ctx, tx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	updated := p.Apply(current)

	_, err = tx.ExecContext(ctx,
		r.rebind(`UPDATE transactions SET description = ?, amount = ?, type = ?, category = ?, occurred_at = ? WHERE id = ?`),
		updated.Description, updated.Amount.String(), string(updated.Type), updated.Category, r.timeArg(updated.Date), id)
	if err != nil {
		return core.Transaction{}, core.Unavailable("update transaction", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, core.Unavailable("commit update", err)
	}
	return updated, nil
}

// DeleteTransaction implements TransactionStore
func (r *SQLRepository) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM transactions WHERE id = ?`), id)
	if err != nil {
		return false, core.Unavailable("delete transaction", err)
	}
	return rowsDeleted(res, "delete transaction")
}

func rowsDeleted(res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, core.Unavailable(op, err)
	}
	return n > 0, nil
}
