package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/storage/memory"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	store := memory.New()
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api"
	}
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	if opts.Ready == nil {
		opts.Ready = store.Ping
	}
	srv := NewServer(":0", services.NewLedgerService(store, store), opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func message(t *testing.T, rr *httptest.ResponseRecorder) string {
	return decode[messageResponse](t, rr).Message
}

func balanceOf(t *testing.T, srv *Server) decimal.Decimal {
	t.Helper()
	rr := do(t, srv, http.MethodGet, "/api/transactions/balance", "")
	require.Equal(t, http.StatusOK, rr.Code)
	b := decode[balanceResponse](t, rr)
	return decimal.RequireFromString(b.Balance.String())
}

func TestHealthReadyAndIndex(t *testing.T) {
	srv := newTestServer(t, Options{APIPrefix: "/v1"})

	rr := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rr)["status"])

	rr = do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "ok", body["checks"].(map[string]any)["store"])

	rr = do(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Gestor de Finanzas Personales")
	assert.Contains(t, rr.Body.String(), `data-api="/v1"`)

	rr = do(t, srv, http.MethodGet, "/static/app.js", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
	for _, call := range []string{"'POST', '/categories'", "'PUT', '/categories/'", "'DELETE', '/categories/'"} {
		assert.Contains(t, rr.Body.String(), call, "UI uses every category route")
	}
}

func TestReadyReportsStoreFailure(t *testing.T) {
	srv := newTestServer(t, Options{Ready: func(context.Context) error {
		return core.Unavailable("ping", errors.New("connection refused"))
	}})

	rr := do(t, srv, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "not_ready", decode[map[string]any](t, rr)["status"])
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestTransactionLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Sueldo","amount":1500,"type":"income","category":"Salario","date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	salary := decode[transactionResponse](t, rr)
	assert.NotEmpty(t, salary.ID)
	assert.Equal(t, "1500", salary.Amount.String())
	assert.Equal(t, "2024-01-01T00:00:00Z", salary.Date)

	rr = do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Almuerzo","amount":"10,50","type":"expense","category":"Comida","date":"2024-01-02T12:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	lunch := decode[transactionResponse](t, rr)

	rr = do(t, srv, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]transactionResponse](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, lunch.ID, list[0].ID, "most recent first")
	assert.Equal(t, salary.ID, list[1].ID)

	assert.True(t, balanceOf(t, srv).Equal(decimal.RequireFromString("1489.5")))

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+lunch.ID, `{"amount":20.5}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[transactionResponse](t, rr)
	assert.Equal(t, "20.5", updated.Amount.String())
	assert.Equal(t, "Almuerzo", updated.Description, "absent fields are unchanged")
	assert.Equal(t, "Comida", updated.Category)

	rr = do(t, srv, http.MethodGet, "/api/transactions/"+lunch.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "20.5", decode[transactionResponse](t, rr).Amount.String())

	assert.True(t, balanceOf(t, srv).Equal(decimal.RequireFromString("1479.5")))

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+lunch.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, MsgTransactionDeleted, message(t, rr))

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+lunch.ID, "")
	assert.Equal(t, http.StatusOK, rr.Code, "deleting twice is not an error")

	assert.True(t, balanceOf(t, srv).Equal(decimal.NewFromInt(1500)))
}

func TestCreateTransactionDefaultsDate(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Taxi","amount":12,"type":"expense","category":"Transporte"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.NotEmpty(t, decode[transactionResponse](t, rr).Date)
}

func TestCreateTransactionRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"zero amount", `{"description":"x","amount":0,"type":"expense","category":"c"}`, MsgInvalidAmount},
		{"negative amount", `{"description":"x","amount":-5,"type":"expense","category":"c"}`, MsgInvalidAmount},
		{"non-numeric amount", `{"description":"x","amount":"abc","type":"expense","category":"c"}`, MsgInvalidAmount},
		{"missing amount", `{"description":"x","type":"expense","category":"c"}`, MsgInvalidAmount},
		{"exponent amount", `{"description":"x","amount":1e3,"type":"expense","category":"c"}`, MsgInvalidAmount},
		{"huge exponent amount", `{"description":"x","amount":1e400000000,"type":"expense","category":"c"}`, MsgInvalidAmount},
		{"too many decimals", `{"description":"x","amount":0.0000001,"type":"expense","category":"c"}`, MsgInvalidAmount},
		{"too many integer digits", `{"description":"x","amount":123456789012345,"type":"expense","category":"c"}`, MsgInvalidAmount},
		{"thousands separator", `{"description":"x","amount":"1,000","type":"expense","category":"c"}`, MsgInvalidAmount},
		{"bad type", `{"description":"x","amount":1,"type":"transfer","category":"c"}`, MsgInvalidType},
		{"missing type", `{"description":"x","amount":1,"category":"c"}`, MsgInvalidType},
		{"blank description", `{"description":"  ","amount":1,"type":"income","category":"c"}`, MsgDescriptionRequired},
		{"bad date", `{"description":"x","amount":1,"type":"income","category":"c","date":"yesterday"}`, MsgInvalidDate},
		{"not an object", `[1,2]`, MsgInvalidData},
		{"malformed json", `{"description":`, MsgInvalidData},
		{"empty body", ``, MsgInvalidData},
	}

	srv := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.msg, message(t, rr))
		})
	}

	rr := do(t, srv, http.MethodGet, "/api/transactions", "")
	assert.Equal(t, "[]\n", rr.Body.String(), "rejected creates leave nothing behind")
}

func TestUpdateTransaction(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodPut, "/api/transactions/missing", `{"amount":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, MsgTransactionNotFound, message(t, rr))

	rr = do(t, srv, http.MethodPost, "/api/transactions",
		`{"description":"Venta","amount":100,"type":"income","category":"Venta"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decode[transactionResponse](t, rr).ID

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+id, `{"amount":-3}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodPut, "/api/transactions/"+id,
		`{"description":"Libros","amount":"40","type":"expense","category":"Educación","date":"2024-03-01"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[transactionResponse](t, rr)
	assert.Equal(t, transactionResponse{
		ID:          id,
		Description: "Libros",
		Amount:      "40",
		Type:        "expense",
		Category:    "Educación",
		Date:        "2024-03-01T00:00:00Z",
	}, got)

	assert.True(t, balanceOf(t, srv).Equal(decimal.NewFromInt(-40)))
}

func TestCategoryLifecycle(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, name := range []string{"Transporte", "Comida"} {
		rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"`+name+`","type":"expense"}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Salario","type":"income"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	salary := decode[categoryResponse](t, rr)

	rr = do(t, srv, http.MethodGet, "/api/categories/expense", "")
	require.Equal(t, http.StatusOK, rr.Code)
	cats := decode[[]categoryResponse](t, rr)
	require.Len(t, cats, 2)
	assert.Equal(t, "Comida", cats[0].Name)
	assert.Equal(t, "Transporte", cats[1].Name)

	rr = do(t, srv, http.MethodPost, "/api/categories", `{"name":"Comida","type":"expense"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgCategoryExists, message(t, rr))

	rr = do(t, srv, http.MethodPut, "/api/categories/"+salary.ID, `{"name":"Sueldo","type":"income"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, categoryResponse{ID: salary.ID, Name: "Sueldo", Type: "income"}, decode[categoryResponse](t, rr))

	rr = do(t, srv, http.MethodPut, "/api/categories/nope", `{"name":"X","type":"income"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, MsgCategoryNotFound, message(t, rr))

	rr = do(t, srv, http.MethodDelete, "/api/categories/"+salary.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, MsgCategoryDeleted, message(t, rr))

	rr = do(t, srv, http.MethodDelete, "/api/categories/"+salary.ID, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/api/categories/income", "")
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestCategoryValidation(t *testing.T) {
	srv := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/categories/transfer", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, MsgInvalidType, message(t, rr))

	for _, body := range []string{
		`{"name":"","type":"income"}`,
		`{"name":"X","type":"other"}`,
		`{"name":"X"}`,
	} {
		rr := do(t, srv, http.MethodPost, "/api/categories", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		assert.Equal(t, MsgInvalidData, message(t, rr), body)

		rr = do(t, srv, http.MethodPut, "/api/categories/any", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

type failingLedger struct{ Ledger }

var errDisk = core.Unavailable("list transactions", errors.New("disk I/O error"))

func (failingLedger) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errDisk
}

func (failingLedger) GetBalance(context.Context) (decimal.Decimal, error) {
	return decimal.Zero, errDisk
}

func (failingLedger) RemoveTransaction(context.Context, string) error { return errDisk }

func TestStoreFailuresAreOpaque(t *testing.T) {
	srv := NewServer(":0", failingLedger{}, Options{APIPrefix: "/api", Logger: quietLogger()})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/transactions"},
		{http.MethodGet, "/api/transactions/balance"},
		{http.MethodDelete, "/api/transactions/x"},
	} {
		rr := do(t, srv, tc.method, tc.path, "")
		assert.Equal(t, http.StatusInternalServerError, rr.Code, tc.path)
		assert.Equal(t, MsgInternal, message(t, rr))
		assert.NotContains(t, rr.Body.String(), "disk")
	}
}

func TestRateLimitAppliesToMutationsOnly(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"C`+string(rune('a'+i))+`","type":"income"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/categories", `{"name":"Cz","type":"income"}`)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Equal(t, MsgRateLimited, message(t, rr))

	rr = do(t, srv, http.MethodGet, "/api/categories/income", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddlewareHeaders(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: []string{"localhost:3000"}})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("X-Request-ID", "abc123")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "abc123", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	req = httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{RateLimitPerMinute: 10})
	do(t, srv, http.MethodGet, "/api/transactions", "")

	rr := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "http_requests_total 2")
	assert.Contains(t, rr.Body.String(), "rate_limit_rejected_total 0")
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"direct peer", "203.0.113.7:5555", "", "", "203.0.113.7"},
		{"untrusted peer ignores XFF", "203.0.113.7:5555", "198.51.100.1", "", "203.0.113.7"},
		{"trusted proxy XFF", "10.0.0.2:80", "198.51.100.1, 10.0.0.2", "", "198.51.100.1"},
		{"trusted proxy X-Real-IP", "127.0.0.1:80", "", "198.51.100.9", "198.51.100.9"},
		{"trusted proxy bad XFF", "192.168.1.1:80", "not-an-ip", "", "192.168.1.1"},
		{"no port", "203.0.113.7", "", "", "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, extractClientIP(r))
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{core.ErrDuplicateCategory, http.StatusBadRequest, MsgCategoryExists},
		{core.ErrEmptyName, http.StatusBadRequest, MsgNameRequired},
		{core.ErrEmptyID, http.StatusBadRequest, MsgInvalidData},
		{errBodyTooLarge, http.StatusRequestEntityTooLarge, MsgBodyTooLarge},
		{core.ErrNotFound, http.StatusNotFound, MsgNotFound},
		{context.Canceled, http.StatusInternalServerError, MsgInternal},
	}
	for _, tt := range tests {
		status, msg := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.msg, msg, tt.err.Error())
	}
}
