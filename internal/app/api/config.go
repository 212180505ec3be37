package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"

	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
)

// Config carries environment-driven settings for the API and worker processes.
type Config struct {
	Port              string
	PostgresDSN       string
	PostgresDriver    platformpostgres.Driver
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	// PlacementMaxAttempts and PlacementBackoff bound optimistic retries for orders and products.
	PlacementMaxAttempts int
	PlacementBackoff     time.Duration
	IdempotencyTTL       time.Duration
	LowStockThreshold    int32
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	defaults := optimistic.DefaultPolicy()
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		PlacementBackoff:  defaults.Backoff,
		IdempotencyTTL:    24 * time.Hour,
		LowStockThreshold: 10,
	}
	driver, err := platformpostgres.ParseDriver(os.Getenv("POSTGRES_DRIVER"))
	if err != nil {
		return Config{}, fmt.Errorf("POSTGRES_DRIVER: %w", err)
	}
	cfg.PostgresDriver = driver

	if cfg.RedisDB, err = envInt("REDIS_DB", 0, 0); err != nil {
		return Config{}, err
	}
	if cfg.PlacementMaxAttempts, err = envInt("PLACEMENT_MAX_ATTEMPTS", defaults.MaxAttempts, 1); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("PLACEMENT_BACKOFF_MS")); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return Config{}, fmt.Errorf("PLACEMENT_BACKOFF_MS must be a non-negative integer")
		}
		cfg.PlacementBackoff = time.Duration(ms) * time.Millisecond
	}
	if raw := strings.TrimSpace(os.Getenv("IDEMPOTENCY_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("IDEMPOTENCY_TTL_HOURS must be a positive integer")
		}
		cfg.IdempotencyTTL = time.Duration(hours) * time.Hour
	}
	threshold, err := envInt("LOW_STOCK_THRESHOLD", int(cfg.LowStockThreshold), 0)
	if err != nil {
		return Config{}, err
	}
	cfg.LowStockThreshold = int32(threshold)
	return cfg, nil
}

// RetryPolicy returns the bounded retry policy for optimistic writes.
func (c Config) RetryPolicy() optimistic.Policy {
	return optimistic.Policy{MaxAttempts: c.PlacementMaxAttempts, Backoff: c.PlacementBackoff}
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback, minimum int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < minimum {
		return 0, fmt.Errorf("%s must be an integer >= %d", key, minimum)
	}
	return value, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
