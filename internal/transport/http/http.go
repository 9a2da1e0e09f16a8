// Package http implements the HTTP/WebSocket transport for finecho.
//
// This transport exposes the REST API used by the dashboard, the voice
// command endpoint, and a WebSocket endpoint for voice sessions. It is
// best suited for browsers and phones.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/finecho/docs" // registers the OpenAPI document
	"github.com/nadzzz/finecho/internal/config"
	"github.com/nadzzz/finecho/internal/transport"
)

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port   int
	auth   config.AuthConfig
	server *http.Server
}

// New creates a new HTTP transport.
func New(cfg config.HTTPConfig, auth config.AuthConfig) *Transport {
	return &Transport{port: cfg.Port, auth: auth}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the routed, middleware-wrapped handler for svc.
func (t *Transport) Handler(svc transport.Service) http.Handler {
	h := &handlers{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("GET /api/users/{id}", h.getUser)

	mux.HandleFunc("POST /api/transactions", h.createTransaction)
	mux.HandleFunc("GET /api/users/{userId}/transactions", h.listTransactions)
	mux.HandleFunc("GET /api/users/{userId}/accounts", h.listAccounts)
	mux.HandleFunc("GET /api/users/{userId}/budgets", h.listBudgets)
	mux.HandleFunc("GET /api/users/{userId}/goals", h.listGoals)
	mux.HandleFunc("POST /api/goals/{id}/progress", h.addGoalProgress)

	mux.HandleFunc("GET /api/users/{userId}/financial-summary", h.financialSummary)
	mux.HandleFunc("GET /api/users/{userId}/insights", h.insights)

	mux.HandleFunc("POST /api/voice-commands", h.processCommand)
	mux.HandleFunc("GET /api/users/{userId}/voice-commands", h.listVoiceCommands)

	// GET /ws: WebSocket voice session.
	mux.HandleFunc("GET /ws", h.voiceSession)

	// Swagger UI, backed by the docs package.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var handler http.Handler = mux
	if t.auth.Enabled() {
		handler = requireAuth(t.auth, handler)
	}
	return chain(handler, requestID, accessLog, recovery, cors)
}

// Listen starts the HTTP server and routes incoming requests to svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port, "auth", t.auth.Enabled())

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

var _ transport.Transport = (*Transport)(nil)
