package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/paycheck-sim/paycheck-be/internal/config"
	"github.com/paycheck-sim/paycheck-be/internal/payment"
	"github.com/paycheck-sim/paycheck-be/internal/server"
	"github.com/paycheck-sim/paycheck-be/internal/storage"
	"github.com/paycheck-sim/paycheck-be/internal/storage/postgres"
	"github.com/paycheck-sim/paycheck-be/internal/storage/sqlite"
	"github.com/paycheck-sim/paycheck-be/pkg/logging"
)

func main() {
	loadLocalEnv()
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("init storage failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if cfg.SeedDemoData {
		if err := storage.SeedDemoData(ctx, store); err != nil {
			slog.Error("seed demo data failed", "error", err)
			os.Exit(1)
		}
		slog.Info("demo data seeded")
	}

	authorizer := payment.NewAuthorizer(store, slog.Default())
	srv := server.New(cfg, store, authorizer)

	go func() {
		slog.Info("paycheck backend listening", "address", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		slog.Warn("graceful shutdown error", "error", err)
	}
}

// openStore picks Postgres when DATABASE_URL is set, SQLite otherwise.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		slog.Info("using postgres storage")
		return postgres.New(ctx, cfg.DatabaseURL)
	}
	slog.Info("using sqlite storage", "path", cfg.SQLitePath)
	return sqlite.New(cfg.SQLitePath)
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}
}
