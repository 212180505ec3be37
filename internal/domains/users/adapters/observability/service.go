package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	userdomain "github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
)

const tracerName = "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
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

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
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

func (s *Service) Register(ctx context.Context, input userports.RegisterInput, actor audit.Actor) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.username", input.Username)))
	defer span.End()
	result, err := s.inner.Register(ctx, input, actor)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user", slog.String("username", input.Username))
	}
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "user registered", slog.Int64("user.id", result.ID), slog.String("actor", actor.String()))
	return result, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByID", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	return s.inner.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetByUsername", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()
	return s.inner.GetByUsername(ctx, username)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
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
	registered metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of users registered"))
	return serviceMetrics{registered: registered}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
