package mapper

import (
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

// OrderLineRequest is one requested cart line.
type OrderLineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// PlaceOrderRequest is the inbound cart payload.
type PlaceOrderRequest struct {
	Items           []OrderLineRequest `json:"items"`
	ShippingAddress string             `json:"shippingAddress"`
}

// OrderItem is the HTTP representation of a line item.
type OrderItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int32  `json:"quantity"`
	Price       string `json:"price"`
	LineTotal   string `json:"lineTotal"`
}

// Order is the HTTP representation of a placed order.
type Order struct {
	ID              int64       `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	UserID          int64       `json:"userId"`
	Total           string      `json:"total"`
	Status          string      `json:"status"`
	ShippingAddress string      `json:"shippingAddress"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Items           []OrderItem `json:"items"`
}

// OrderPage wraps a paged order listing.
type OrderPage struct {
	Items      []Order `json:"items"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
	Total      int64   `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// ToPlaceOrderInput binds the cart to the caller. Shape checks happen in the service.
func ToPlaceOrderInput(req PlaceOrderRequest, userID int64, idempotencyKey string, actor audit.Actor) ports.PlaceOrderInput {
	lines := make([]domain.Line, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, domain.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return ports.PlaceOrderInput{
		UserID:          userID,
		Lines:           lines,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  idempotencyKey,
		Actor:           actor,
	}
}

func FromDomainOrder(o *domain.Order) Order {
	items := make([]OrderItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal().StringFixed(2),
		})
	}
	return Order{
		ID:              o.ID,
		OrderNumber:     o.Number,
		UserID:          o.UserID,
		Total:           o.Total.StringFixed(2),
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Items:           items,
	}
}

func FromOrderPage(page projection.Paged[*domain.Order]) OrderPage {
	items := make([]Order, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, FromDomainOrder(o))
	}
	return OrderPage{
		Items:      items,
		Page:       page.Page.Number,
		Size:       page.Page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages(),
	}
}
