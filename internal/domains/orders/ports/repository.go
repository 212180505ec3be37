package ports

import (
	"context"
	"errors"

	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	userdomain "github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateOrderNumber is raised when the generated number hits the unique index.
	ErrDuplicateOrderNumber = errors.New("order number already in use")
)

// Repository persists order aggregates. Both writes are all-or-nothing: the
// stock changes and the order row commit together or not at all, and any
// stale version yields optimistic.ErrVersionConflict.
type Repository interface {
	// Place applies the stock changes and inserts the order with its items.
	Place(ctx context.Context, order *domain.Order, stock []catalogports.StockChange) (*domain.Order, error)
	// Transition applies the stock changes and writes the order's status,
	// conditional on order.Version still being current.
	Transition(ctx context.Context, order *domain.Order, stock []catalogports.StockChange) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// ListByUser pages through a user's orders, newest first.
	ListByUser(ctx context.Context, userID int64, page projection.Page) (projection.Paged[*domain.Order], error)
	// List pages through all orders, newest first.
	List(ctx context.Context, page projection.Page) (projection.Paged[*domain.Order], error)
}

// ProductReader is the slice of the catalog the orchestrator reads from.
type ProductReader interface {
	FindByIDs(ctx context.Context, ids []int64) ([]*catalogdomain.Product, error)
}

// UserDirectory resolves the placing user. Missing users yield a nil user and no error.
type UserDirectory interface {
	Lookup(ctx context.Context, id int64) (*userdomain.User, error)
}
