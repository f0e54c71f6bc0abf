package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/arul-vhs/STORMSIGHT-AI/internal/api"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/config"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/observability"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/store"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st := store.New(cfg, logger)
	srv := api.NewServer(cfg.HTTPAddr, st, cfg.DefaultStormID, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Try the initial store connection eagerly so startup problems surface
	// in the log, but keep serving: the store reconnects on a later call.
	if err := st.Ping(ctx); err != nil {
		logger.Warn("initial store connection failed, will retry on demand", "error", err)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := st.Disconnect(shutdownCtx); err != nil {
		logger.Error("store disconnect error", "error", err)
	}

	logger.Info("shutdown complete")
}
