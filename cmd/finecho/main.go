// FinEcho is a voice-driven personal finance assistant. It interprets spoken
// commands against a user's accounts, transactions and budgets, and serves
// the finance API over HTTP/WebSocket and gRPC.
//
// Usage:
//
//	finecho [flags]
//	finecho --config /path/to/finecho.yaml
//	finecho --issue-token 1
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nadzzz/finecho/internal/advisor"
	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/completion/gemini"
	"github.com/nadzzz/finecho/internal/completion/local"
	"github.com/nadzzz/finecho/internal/completion/openai"
	"github.com/nadzzz/finecho/internal/config"
	"github.com/nadzzz/finecho/internal/dispatch"
	"github.com/nadzzz/finecho/internal/health"
	"github.com/nadzzz/finecho/internal/interpreter"
	"github.com/nadzzz/finecho/internal/store/memory"
	"github.com/nadzzz/finecho/internal/transport"
	grpctransport "github.com/nadzzz/finecho/internal/transport/grpc"
	httptransport "github.com/nadzzz/finecho/internal/transport/http"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/finecho.yaml)")
	issueToken := flag.Int64("issue-token", 0, "print a bearer token for this user ID and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a token printed by --issue-token")
	flag.Parse()

	if *showVersion {
		fmt.Printf("finecho %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if *issueToken != 0 {
		if !cfg.Auth.Enabled() {
			slog.Error("auth.jwt_secret is not set; tokens are not required")
			os.Exit(1)
		}
		token, err := httptransport.IssueToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, *issueToken, *tokenTTL)
		if err != nil {
			slog.Error("failed to issue token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		os.Exit(0)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("finecho starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the data store.
	store := memory.New()
	if cfg.Store.SeedDemo {
		user, err := store.Seed(ctx, time.Now())
		if err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		slog.Info("seeded demo data", "user_id", user.ID, "username", user.Username)
	}

	// Initialize the completion backend.
	completer, err := newCompleter(ctx, cfg.Completion)
	if err != nil {
		slog.Error("failed to initialize completion backend", "backend", cfg.Completion.Backend, "error", err)
		os.Exit(1)
	}
	if completer != nil {
		defer completer.Close()
	}

	// Create the dispatcher.
	interp := interpreter.New(store, completer, interpreter.WithTimeout(cfg.Completion.Timeout))
	adv := advisor.New(store, completer, advisor.WithTimeout(cfg.Completion.Timeout))
	dispatcher := dispatch.New(store, interp, adv, time.Now)

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP, cfg.Auth))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC))
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort)
	healthServer.AddCheck(store.Name(), store.Ping)
	healthServer.SetDetail("completion", cfg.Completion.Backend)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, dispatcher); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("finecho ready",
		"transports", len(transports),
		"completion", cfg.Completion.Backend,
		"auth", cfg.Auth.Enabled(),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")
	healthServer.SetReady(false)

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("finecho stopped")
}

// newCompleter returns nil for the "none" backend.
func newCompleter(ctx context.Context, cfg config.CompletionConfig) (completion.Completer, error) {
	switch cfg.Backend {
	case config.BackendOpenAI:
		slog.Info("using OpenAI completion", "model", cfg.OpenAI.Model)
		return openai.New(cfg.OpenAI), nil
	case config.BackendLocal:
		slog.Info("using local completion", "endpoint", cfg.Local.Endpoint, "model", cfg.Local.Model)
		return local.New(cfg.Local), nil
	case config.BackendGemini:
		slog.Info("using Gemini completion", "model", cfg.Gemini.Model)
		c, err := gemini.New(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendNone:
		slog.Info("completion disabled, using keyword rules only")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown completion backend %q", cfg.Backend)
}
