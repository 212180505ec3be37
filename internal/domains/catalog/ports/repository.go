package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

var ErrNotFound = errors.New("product not found")

// StockChange is a version-guarded stock write for one product. It succeeds only
// while the stored version still equals ExpectedVersion and bumps it by one.
type StockChange struct {
	ProductID       int64
	Stock           int32
	ExpectedVersion int64
}

// StockChangeFor captures the current in-memory stock of a product read earlier.
func StockChangeFor(p *domain.Product) StockChange {
	return StockChange{ProductID: p.ID, Stock: p.Stock, ExpectedVersion: p.Version}
}

// Repository persists products. Update and stock changes are conditional on the
// product version and fail with optimistic.ErrVersionConflict on mismatch.
type Repository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// FindByIDs returns the distinct products found for ids; missing ids are skipped.
	FindByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error)
	// LowStock returns active products with stock <= threshold ordered by stock ascending.
	LowStock(ctx context.Context, threshold int32) ([]*domain.Product, error)
	// ListActive returns a page of active products ordered by id.
	ListActive(ctx context.Context, page projection.Page) (projection.Paged[*domain.Product], error)
}
