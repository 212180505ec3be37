package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Options describes how to reach the Redis server.
type Options struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// Connect opens a Redis client and verifies connectivity.
func Connect(ctx context.Context, opts Options) (*goredis.Client, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = 100
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// ConnectFromConfig dials Redis and returns the client plus a cleanup function.
// When the address is empty or the server is unreachable, it logs and returns nil with a no-op cleanup.
func ConnectFromConfig(ctx context.Context, logger *slog.Logger, opts Options) (*goredis.Client, func()) {
	if strings.TrimSpace(opts.Addr) == "" {
		if logger != nil {
			logger.Warn("REDIS_ADDR not set, idempotency keys stay in the primary store")
		}
		return nil, func() {}
	}
	client, err := Connect(ctx, opts)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to redis, idempotency keys stay in the primary store", slog.String("addr", opts.Addr), slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("redis connection established", slog.String("addr", opts.Addr))
	}
	return client, func() { _ = client.Close() }
}
