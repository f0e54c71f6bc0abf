// Command loader performs the one-time batch ingestion of a KMZ best-track
// archive into the track collection, replacing any prior batch for the
// configured storm identifier and ensuring the indexes the query service
// depends on.
//
// Configuration comes from the environment (optionally a .env file):
// KMZ_PATH and STORM_ID select the input, MONGO_* select the destination.
// The run is single-threaded and executes to completion once; on any stage
// failure it exits non-zero with a diagnostic.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/arul-vhs/STORMSIGHT-AI/internal/config"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/ingest"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/observability"
	"github.com/arul-vhs/STORMSIGHT-AI/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st := store.New(cfg, logger)
	pipeline := ingest.New(cfg.KMZPath, cfg.StormID, st, logger, metrics)

	ctx := context.Background()

	runErr := pipeline.Run(ctx)

	if err := st.Disconnect(ctx); err != nil {
		logger.Error("store disconnect error", "error", err)
	}

	if runErr != nil {
		logger.Error("ingestion failed", "error", runErr)
		os.Exit(1)
	}
}
