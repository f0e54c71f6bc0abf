package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// DefaultStormID identifies the sole pre-loaded track. Queries that omit
// storm_id, and loader runs that don't override STORM_ID, use it.
const DefaultStormID = "BESTTRACK_2020"

// Config holds all service settings, populated from environment variables.
// Both binaries share one config type; the loader ignores the HTTP fields
// and the API server ignores the KMZ fields.
type Config struct {
	MongoURI        string
	MongoDB         string
	MongoCollection string
	ConnectTimeout  time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Loader settings: one archive, one storm identifier per run.
	KMZPath string
	StormID string

	// DefaultStormID is the storm served when a request omits storm_id.
	DefaultStormID string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	connectTimeout, err := parsePositiveDuration("MONGO_CONNECT_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		MongoURI:        envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         envOrDefault("MONGO_DB", "stormsight_db"),
		MongoCollection: envOrDefault("MONGO_COLLECTION", "track_data"),
		ConnectTimeout:  connectTimeout,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KMZPath:         envOrDefault("KMZ_PATH", "data/IO_besttracks_2020-2020.kmz"),
		StormID:         envOrDefault("STORM_ID", DefaultStormID),
		DefaultStormID:  envOrDefault("DEFAULT_STORM_ID", DefaultStormID),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGO_URI is required")
	}
	if cfg.MongoDB == "" {
		return nil, errors.New("MONGO_DB is required")
	}
	if cfg.MongoCollection == "" {
		return nil, errors.New("MONGO_COLLECTION is required")
	}
	if cfg.KMZPath == "" {
		return nil, errors.New("KMZ_PATH is required")
	}

	return cfg, nil
}

// envOrDefault returns the environment value for key, or fallback when the
// variable is unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}
