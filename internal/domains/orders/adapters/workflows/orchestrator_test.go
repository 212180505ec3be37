package workflows

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/directory"
	ordersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	usersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/memory"
	usersapp "github.com/Apurer/go-gin-orders-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
)

func TestInlineOrderWorkflowsDelegatesToService(t *testing.T) {
	ctx := context.Background()
	catalog := catalogmemory.NewRepository()
	users := usersapp.NewService(usersmemory.NewRepository())
	user, err := users.Register(ctx, userports.RegisterInput{Username: "bob"}, audit.System)
	require.NoError(t, err)
	product, err := catalogdomain.NewProduct("Lamp", "", "", decimal.RequireFromString("19.99"), 4)
	require.NoError(t, err)
	product, err = catalog.Create(ctx, product)
	require.NoError(t, err)

	svc := ordersapp.NewService(ordersmemory.NewRepository(catalog), catalog, directory.NewUsers(users))
	order, err := NewInlineOrderWorkflows(svc).PlaceOrder(ctx, ports.PlaceOrderInput{
		UserID:          user.ID,
		Lines:           []domain.Line{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: "1 Main St",
		Actor:           audit.NewActor("bob"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, order.Status)
	require.Equal(t, "39.98", order.Total.StringFixed(2))
}

func TestInlineOrderWorkflowsRequiresService(t *testing.T) {
	var o *InlineOrderWorkflows
	_, err := o.PlaceOrder(context.Background(), ports.PlaceOrderInput{})
	require.Error(t, err)
}

func TestTemporalOrderWorkflowsRequiresClient(t *testing.T) {
	_, err := NewTemporalOrderWorkflows(nil).PlaceOrder(context.Background(), ports.PlaceOrderInput{})
	require.Error(t, err)
}

func TestBuildOrderPlacementWorkflowID(t *testing.T) {
	keyed := buildOrderPlacementWorkflowID(ports.PlaceOrderInput{UserID: 7, IdempotencyKey: " abc "}, "trace")
	require.Equal(t, keyed, buildOrderPlacementWorkflowID(ports.PlaceOrderInput{UserID: 8, IdempotencyKey: "abc"}, "other"))
	require.Regexp(t, `^order-placement-idem-[0-9a-f]{16}$`, keyed)

	require.Equal(t, "order-placement-7-trace", buildOrderPlacementWorkflowID(ports.PlaceOrderInput{UserID: 7}, "trace"))
}

func TestWorkflowTraceComponentFallsBack(t *testing.T) {
	require.Empty(t, workflowTraceID(context.Background()))
	require.Regexp(t, `^fallback-\d+$`, workflowTraceComponent(context.Background()))
}
