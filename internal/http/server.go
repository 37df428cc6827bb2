package http

import (
	"bytes"
	"context"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/middleware/cors"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	appweb "finanzas/web"
)

// Ledger is the domain surface the API exposes. *services.LedgerService implements it.
type Ledger interface {
	AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	EditTransaction(ctx context.Context, id string, p core.TransactionPatch) (core.Transaction, error)
	RemoveTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetBalance(ctx context.Context) (decimal.Decimal, error)

	ListCategories(ctx context.Context, typ string) ([]core.Category, error)
	AddCategory(ctx context.Context, name, typ string) (core.Category, error)
	EditCategory(ctx context.Context, id, name, typ string) (core.Category, error)
	RemoveCategory(ctx context.Context, id string) error
}

// Options configures a Server. The zero value mounts the API at the root with
// CORS open to any origin and rate limiting disabled.
type Options struct {
	// APIPrefix is prepended to every API route, e.g. "/api".
	APIPrefix      string
	AllowedOrigins []string
	// RateLimitPerMinute caps mutating requests per client IP; 0 disables it.
	RateLimitPerMinute int
	Logger             *log.Logger
	// Ready backs /readyz, typically the store's Ping.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger  Ledger
	ready   func(ctx context.Context) error
	logger  *log.Logger
	tracer  *trace.Middleware
	limiter *ratelimit.Limiter
	started time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:  ledger,
		ready:   opts.Ready,
		logger:  logger,
		tracer:  trace.NewMiddleware(logger, extractClientIP),
		started: time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux, strings.TrimRight(opts.APIPrefix, "/"))

	var handler http.Handler = mux
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
		handler = s.limiter.Middleware(extractClientIP, s.handleRateLimited)(handler)
	}
	handler = cors.New(opts.AllowedOrigins)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/transactions", s.handleListTransactions)
	mux.HandleFunc("GET "+prefix+"/transactions/balance", s.handleBalance)
	mux.HandleFunc("GET "+prefix+"/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("POST "+prefix+"/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT "+prefix+"/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE "+prefix+"/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET "+prefix+"/categories/{type}", s.handleListCategories)
	mux.HandleFunc("POST "+prefix+"/categories", s.handleCreateCategory)
	mux.HandleFunc("PUT "+prefix+"/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE "+prefix+"/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
		s.mountIndex(mux, sub, prefix)
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}
}

// mountIndex serves index.html at "/" with the API prefix filled in.
func (s *Server) mountIndex(mux *http.ServeMux, static fs.FS, prefix string) {
	page, err := fs.ReadFile(static, "index.html")
	if err != nil {
		s.logger.Warn("Embedded index.html missing", log.FieldError, err.Error())
		return
	}
	page = bytes.Replace(page, []byte(`data-api="/api"`), []byte(`data-api="`+prefix+`"`), 1)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(page)
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, MsgRateLimited).Write(w, r)
}

// Shutdown stops the rate limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
