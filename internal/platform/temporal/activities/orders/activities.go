package orders

import (
	"context"
	"errors"
	"strings"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// PlaceOrderActivityName runs one placement through the orders service.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Application error types carried across the Temporal boundary.
const (
	ErrTypeInvalidInput        = "InvalidInput"
	ErrTypeNotFound            = "NotFound"
	ErrTypeInsufficientStock   = "InsufficientStock"
	ErrTypeConcurrencyConflict = "ConcurrencyConflict"
	ErrTypeIdempotencyConflict = "IdempotencyConflict"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder places the order. Without a client key the workflow id becomes the
// idempotency key, so a retried activity replays instead of placing twice.
func (a *Activities) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("order placement activity not initialized", "userId", input.UserID)
		return nil, errors.New("order placement activity not initialized")
	}
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		input.IdempotencyKey = "wf:" + activity.GetInfo(ctx).WorkflowExecution.ID
	}
	logger.Info("PlaceOrder activity started", "userId", input.UserID, "lines", len(input.Lines))
	order, err := a.service.PlaceOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "userId", input.UserID, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID, "orderNumber", order.Number)
	return order, nil
}

// ToApplicationError tags business failures so they survive serialization.
// Only concurrency conflicts stay retryable.
func ToApplicationError(err error) error {
	switch {
	case errors.Is(err, ordersapp.ErrConcurrencyConflict):
		return temporal.NewApplicationErrorWithCause(err.Error(), ErrTypeConcurrencyConflict, err)
	case errors.Is(err, ordersapp.ErrInsufficientStock):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, err)
	case errors.Is(err, ordersapp.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, err)
	case errors.Is(err, ordersapp.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeIdempotencyConflict, err)
	}
	return err
}

// FromApplicationError restores the sentinel behind a tagged failure.
func FromApplicationError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	var sentinel error
	switch appErr.Type() {
	case ErrTypeConcurrencyConflict:
		sentinel = ordersapp.ErrConcurrencyConflict
	case ErrTypeInsufficientStock:
		sentinel = ordersapp.ErrInsufficientStock
	case ErrTypeNotFound:
		sentinel = ordersapp.ErrNotFound
	case ErrTypeInvalidInput:
		sentinel = ordersapp.ErrInvalidInput
	case ErrTypeIdempotencyConflict:
		sentinel = ordersapp.ErrIdempotencyConflict
	default:
		return err
	}
	return &taggedError{sentinel: sentinel, msg: appErr.Error()}
}

type taggedError struct {
	sentinel error
	msg      string
}

func (e *taggedError) Error() string { return e.msg }
func (e *taggedError) Unwrap() error { return e.sentinel }
