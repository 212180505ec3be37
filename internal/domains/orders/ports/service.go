package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

// PlaceOrderInput is a cart submitted by a user.
type PlaceOrderInput struct {
	UserID          int64
	Lines           []domain.Line
	ShippingAddress string
	// IdempotencyKey is optional; a repeated key replays the first result.
	IdempotencyKey string
	Actor          audit.Actor
}

// Service exposes order placement and lifecycle use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID, userID int64, actor audit.Actor) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.Status, actor audit.Actor) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error)
	GetOrderAdmin(ctx context.Context, orderID int64) (*domain.Order, error)
	ListUserOrders(ctx context.Context, userID int64, page projection.Page) (projection.Paged[*domain.Order], error)
	ListOrders(ctx context.Context, page projection.Page) (projection.Paged[*domain.Order], error)
}
