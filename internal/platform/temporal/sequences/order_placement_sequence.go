package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence executes the activity that commits an order. Business
// failures are non-retryable; concurrency conflicts get a few more durable attempts.
func RunOrderPlacementSequence(ctx workflow.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement sequence started", "userId", input.UserID)
	placeOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Second,
			MaximumAttempts:    3,
			NonRetryableErrorTypes: []string{
				orderactivities.ErrTypeInvalidInput,
				orderactivities.ErrTypeNotFound,
				orderactivities.ErrTypeInsufficientStock,
				orderactivities.ErrTypeIdempotencyConflict,
			},
		},
	}

	var order domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, placeOptions), orderactivities.PlaceOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order placement sequence failed", "userId", input.UserID, "error", err)
		return nil, err
	}
	logger.Info("order placement sequence committed", "orderId", order.ID, "orderNumber", order.Number)
	return &order, nil
}
