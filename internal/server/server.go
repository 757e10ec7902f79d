package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paycheck-sim/paycheck-be/internal/auth"
	"github.com/paycheck-sim/paycheck-be/internal/config"
	"github.com/paycheck-sim/paycheck-be/internal/http/handlers"
	"github.com/paycheck-sim/paycheck-be/internal/middleware"
	"github.com/paycheck-sim/paycheck-be/internal/payment"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.Store, authorizer *payment.Authorizer) *Server {
	mux := NewMux(cfg, store, authorizer)
	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewMux registers every route on a fresh ServeMux. Split out from New
// so handler tests can drive the full routing table through httptest.
func NewMux(cfg config.Config, store storage.Store, authorizer *payment.Authorizer) *http.ServeMux {
	mux := http.NewServeMux()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	authenticator := auth.NewAuthenticator(store)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(authenticator, tokens).Register(mux)
	handlers.NewUsersHandler(store).Register(mux)
	handlers.NewBillsHandler(store, tokens).Register(mux)
	handlers.NewPaymentsHandler(authorizer, tokens).Register(mux)
	handlers.NewTransactionsHandler(store, tokens).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
