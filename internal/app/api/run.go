package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	ordersserver "github.com/Apurer/go-gin-orders-api/go"
	ordersworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
)

const serviceName = "orders-api"

// Run boots the orders HTTP API with observability, repositories, and workflows wired.
// It returns when ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, cleanup, err := BuildComponents(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	orderWorkflows, closeWorkflows := selectOrderWorkflows(cfg, components, instruments)
	defer closeWorkflows()

	handlers := ordersserver.ApiHandleFunctions{
		OrdersAPI:   ordersserver.NewOrdersAPI(components.Orders, orderWorkflows),
		ProductsAPI: ordersserver.NewProductsAPI(components.Catalog, cfg.LowStockThreshold),
		UsersAPI:    ordersserver.NewUsersAPI(components.Users),
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	router := ordersserver.NewRouterWithGinEngine(engine, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("orders API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("orders API shutting down")
	return server.Shutdown(shutdownCtx)
}

// selectOrderWorkflows hands placement to Temporal when a client connects and the
// stores are shared with the worker. Otherwise orders are placed inline.
func selectOrderWorkflows(cfg Config, components *Components, instruments *platformobservability.Instruments) (ordersports.WorkflowOrchestrator, func()) {
	logger := effectiveLogger(instruments)
	inline := ordersworkflows.NewInlineOrderWorkflows(components.Orders)
	if !components.Durable {
		if !cfg.TemporalDisabled {
			logger.Warn("in-memory stores are not shared with the worker, placing orders inline")
		}
		return inline, func() {}
	}
	temporalClient, err := ConnectTemporalClient(cfg, instruments, "temporal-client")
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return ordersworkflows.NewTemporalOrderWorkflows(temporalClient), temporalClient.Close
}

// ConnectTemporalClient dials Temporal with tracing and structured logging, unless disabled.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer(tracerName)
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
