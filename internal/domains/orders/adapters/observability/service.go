package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

const tracerName = "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core orders service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder", trace.WithAttributes(
		attribute.Int64("user.id", input.UserID),
		attribute.Int("order.lines", len(input.Lines)),
		attribute.Bool("order.idempotent", input.IdempotencyKey != ""),
	))
	defer span.End()
	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.Int64("user.id", input.UserID))
	}
	span.SetAttributes(
		attribute.Int64("order.id", result.ID),
		attribute.String("order.number", result.Number),
		attribute.Bool("order.replayed", result.Unmodified),
	)
	if result.Unmodified {
		s.logInfo(ctx, "order placement replayed", slog.Int64("order.id", result.ID), slog.String("actor", input.Actor.String()))
		return result, nil
	}
	s.metrics.recordPlaced(ctx, result)
	s.logInfo(ctx, "order placed",
		slog.Int64("order.id", result.ID),
		slog.String("order.number", result.Number),
		slog.String("order.total", result.Total.StringFixed(2)),
		slog.String("actor", input.Actor.String()),
	)
	return result, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID, userID int64, actor audit.Actor) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()
	result, err := s.inner.CancelOrder(ctx, orderID, userID, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel order", slog.Int64("order.id", orderID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "order cancelled", slog.Int64("order.id", orderID), slog.String("actor", actor.String()))
	return result, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.Status, actor audit.Actor) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateOrderStatus", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.String("order.status", string(status)),
	))
	defer span.End()
	result, err := s.inner.UpdateOrderStatus(ctx, orderID, status, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status",
			slog.Int64("order.id", orderID), slog.String("order.status", string(status)))
	}
	if !result.Unmodified {
		s.metrics.recordStatusUpdate(ctx, status)
		if status == domain.StatusCancelled {
			s.metrics.recordCancelled(ctx)
		}
	}
	s.logInfo(ctx, "order status updated",
		slog.Int64("order.id", orderID),
		slog.String("order.status", string(result.Status)),
		slog.String("actor", actor.String()),
	)
	return result, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()
	return s.inner.GetOrder(ctx, orderID, userID)
}

func (s *Service) GetOrderAdmin(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderAdmin", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()
	return s.inner.GetOrderAdmin(ctx, orderID)
}

func (s *Service) ListUserOrders(ctx context.Context, userID int64, page projection.Page) (projection.Paged[*domain.Order], error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListUserOrders", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("page.number", page.Number),
	))
	defer span.End()
	return s.inner.ListUserOrders(ctx, userID, page)
}

func (s *Service) ListOrders(ctx context.Context, page projection.Page) (projection.Paged[*domain.Order], error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders", trace.WithAttributes(attribute.Int("page.number", page.Number)))
	defer span.End()
	return s.inner.ListOrders(ctx, page)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if errors.Is(err, ordersapp.ErrConcurrencyConflict) {
		s.metrics.recordConflict(ctx)
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	placed        metric.Int64Counter
	unitsSold     metric.Int64Counter
	cancelled     metric.Int64Counter
	statusUpdates metric.Int64Counter
	conflicts     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.placed", metric.WithDescription("Number of orders placed"))
	units, _ := m.Int64Counter("orders.service.units_sold", metric.WithDescription("Product units taken from stock by placed orders"))
	cancelled, _ := m.Int64Counter("orders.service.cancelled", metric.WithDescription("Number of orders cancelled"))
	updates, _ := m.Int64Counter("orders.service.status_updates", metric.WithDescription("Number of administrative status updates"))
	conflicts, _ := m.Int64Counter("orders.service.concurrency_conflicts", metric.WithDescription("Operations that exhausted optimistic retries"))
	return serviceMetrics{placed: placed, unitsSold: units, cancelled: cancelled, statusUpdates: updates, conflicts: conflicts}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	if m.placed != nil {
		m.placed.Add(ctx, 1)
	}
	if m.unitsSold != nil && order != nil {
		m.unitsSold.Add(ctx, order.ItemCount())
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.cancelled != nil {
		m.cancelled.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStatusUpdate(ctx context.Context, status domain.Status) {
	if m.statusUpdates != nil {
		m.statusUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m serviceMetrics) recordConflict(ctx context.Context) {
	if m.conflicts != nil {
		m.conflicts.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
