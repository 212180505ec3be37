package ordersserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	ordersdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

// OrdersAPI wires HTTP transport with the orders bounded context service and workflows.
type OrdersAPI struct {
	service   ordersports.Service
	workflows ordersports.WorkflowOrchestrator
}

// NewOrdersAPI creates an OrdersAPI. Placement goes through workflows when set.
func NewOrdersAPI(service ordersports.Service, workflows ordersports.WorkflowOrchestrator) OrdersAPI {
	return OrdersAPI{service: service, workflows: workflows}
}

// Post /api/v1/orders
// Place an order for the caller's cart
func (api *OrdersAPI) PlaceOrder(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
	input := orderhttpmapper.ToPlaceOrderInput(payload, caller.UserID, key, caller.Actor)
	order, err := api.placeOrder(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(order))
}

func (api *OrdersAPI) placeOrder(ctx context.Context, input ordersports.PlaceOrderInput) (*ordersdomain.Order, error) {
	if api.workflows != nil {
		return api.workflows.PlaceOrder(ctx, input)
	}
	return api.service.PlaceOrder(ctx, input)
}

// Get /api/v1/orders
// Page through the caller's orders, newest first
func (api *OrdersAPI) ListUserOrders(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := api.service.ListUserOrders(c.Request.Context(), caller.UserID, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderPage(result))
}

// Get /api/v1/orders/all
// Page through every order (admin)
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := api.service.ListOrders(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderPage(result))
}

// Get /api/v1/orders/:orderId
// Find one of the caller's orders
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), id, caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Get /api/v1/orders/admin/:orderId
// Find any order without the ownership check (admin)
func (api *OrdersAPI) GetOrderAdmin(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrderAdmin(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /api/v1/orders/:orderId/status
// Move an order forward through its lifecycle (admin)
func (api *OrdersAPI) UpdateOrderStatus(c *gin.Context) {
	caller, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	status, err := ordersdomain.ParseStatus(c.Query("status"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), id, status, caller.Actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /api/v1/orders/:orderId/cancel
// Cancel one of the caller's orders and restore its stock
func (api *OrdersAPI) CancelOrder(c *gin.Context) {
	caller, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.CancelOrder(c.Request.Context(), id, caller.UserID, caller.Actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	value := c.Param(name)
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

// parsePage reads the zero-based page and size query parameters.
func parsePage(c *gin.Context) (projection.Page, bool) {
	var page projection.Page
	for name, target := range map[string]*int{"page": &page.Number, "size": &page.Size} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, err)
			return projection.Page{}, false
		}
		*target = value
	}
	return page.Normalize(), true
}
