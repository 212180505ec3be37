package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

// ProductInput carries the writable product attributes.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int32
}

// Service exposes catalog use cases to adapters.
type Service interface {
	CreateProduct(ctx context.Context, input ProductInput, actor audit.Actor) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput, actor audit.Actor) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id int64, actor audit.Actor) error
	ListProducts(ctx context.Context, page projection.Page) (projection.Paged[*domain.Product], error)
	LowStockProducts(ctx context.Context, threshold int32) ([]*domain.Product, error)
}
