package api

import (
	"context"
	"fmt"
	"log/slog"

	catalogmemory "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/directory"
	ordersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/redis"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	usersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/memory"
	usersobs "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/observability"
	userspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/persistence/postgres"
	usersapp "github.com/Apurer/go-gin-orders-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	platformredis "github.com/Apurer/go-gin-orders-api/internal/platform/redis"
)

// Components holds the decorated services shared by the API and the worker.
type Components struct {
	Catalog catalogports.Service
	Orders  ordersports.Service
	Users   userports.Service
	// Durable is false when the process runs on in-memory stores. Those stores
	// are private to the process, so a separate worker cannot see them.
	Durable bool
}

type repositories struct {
	catalog     catalogports.Repository
	products    ordersports.ProductReader
	orders      ordersports.Repository
	users       userports.Repository
	idempotency ordersports.IdempotencyStore
	durable     bool
}

// BuildComponents wires repositories and services from configuration. Postgres
// and Redis are optional; without them the process runs on in-memory stores.
func BuildComponents(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Components, func(), error) {
	logger := effectiveLogger(instruments)
	repos, cleanupRepos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	redisClient, cleanupRedis := platformredis.ConnectFromConfig(ctx, logger, platformredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if redisClient != nil {
		repos.idempotency = ordersredis.NewIdempotencyStore(redisClient)
		logger.Info("order idempotency keys stored in redis")
	}
	cleanup := func() {
		cleanupRedis()
		cleanupRepos()
	}

	userService := usersobs.New(
		usersapp.NewService(repos.users),
		usersobs.WithLogger(logger),
		usersobs.WithTracer(instruments.Tracer("internal.users.application")),
		usersobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	catalogService := catalogapp.NewService(repos.catalog, catalogapp.WithRetryPolicy(cfg.RetryPolicy()))
	orderService := ordersobs.New(
		ordersapp.NewService(
			repos.orders,
			repos.products,
			directory.NewUsers(userService),
			ordersapp.WithRetryPolicy(cfg.RetryPolicy()),
			ordersapp.WithIdempotencyStore(repos.idempotency),
			ordersapp.WithIdempotencyTTL(cfg.IdempotencyTTL),
		),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	return &Components{Catalog: catalogService, Orders: orderService, Users: userService, Durable: repos.durable}, cleanup, nil
}

func buildRepositories(ctx context.Context, cfg Config, logger *slog.Logger) (repositories, func(), error) {
	db, cleanup := platformpostgres.ConnectFromConfig(ctx, logger, cfg.PostgresDSN, cfg.PostgresDriver)
	if db == nil {
		catalog := catalogmemory.NewRepository()
		return repositories{
			catalog:     catalog,
			products:    catalog,
			orders:      ordersmemory.NewRepository(catalog),
			users:       usersmemory.NewRepository(),
			idempotency: ordersmemory.NewIdempotencyStore(),
		}, cleanup, nil
	}
	if err := migrations.Run(db); err != nil {
		cleanup()
		return repositories{}, nil, fmt.Errorf("apply migrations: %w", err)
	}
	catalog := catalogpostgres.NewRepository(db)
	logger.Info("repositories configured with postgres")
	return repositories{
		catalog:     catalog,
		products:    catalog,
		orders:      orderspostgres.NewRepository(db),
		users:       userspostgres.NewRepository(db),
		idempotency: orderspostgres.NewIdempotencyStore(db),
		durable:     true,
	}, cleanup, nil
}
