package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator runs placement either inline or through a durable engine.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
}
