package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

func seedProduct(t *testing.T, catalog *catalogmemory.Repository, stock int32) *catalogdomain.Product {
	t.Helper()
	p, err := catalogdomain.NewProduct("Widget", "", "", decimal.RequireFromString("10.00"), stock)
	require.NoError(t, err)
	saved, err := catalog.Create(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func pendingOrder(number string, userID int64, productID int64) *domain.Order {
	items := []domain.Item{{ProductID: productID, ProductName: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}}
	return &domain.Order{
		Number:    number,
		UserID:    userID,
		Status:    domain.StatusPending,
		Items:     items,
		Total:     domain.SumLineTotals(items),
		CreatedBy: "tester",
	}
}

func TestRepository_PlaceCommitsStockAndOrder(t *testing.T) {
	catalog := catalogmemory.NewRepository()
	repo := NewRepository(catalog)
	ctx := context.Background()
	product := seedProduct(t, catalog, 5)

	change := catalogports.StockChange{ProductID: product.ID, Stock: 3, ExpectedVersion: product.Version}
	saved, err := repo.Place(ctx, pendingOrder("ORD-1", 1, product.ID), []catalogports.StockChange{change})
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.Equal(t, saved.ID, saved.Items[0].OrderID)
	require.NotZero(t, saved.Items[0].ID)

	stored, err := catalog.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(3), stored.Stock)
	require.Equal(t, int64(1), stored.Version)
	require.Equal(t, "tester", stored.UpdatedBy)
}

func TestRepository_PlaceRejectsStaleStock(t *testing.T) {
	catalog := catalogmemory.NewRepository()
	repo := NewRepository(catalog)
	ctx := context.Background()
	product := seedProduct(t, catalog, 5)

	stale := catalogports.StockChange{ProductID: product.ID, Stock: 3, ExpectedVersion: product.Version + 1}
	_, err := repo.Place(ctx, pendingOrder("ORD-1", 1, product.ID), []catalogports.StockChange{stale})
	require.ErrorIs(t, err, optimistic.ErrVersionConflict)

	page, err := repo.List(ctx, projection.Page{})
	require.NoError(t, err)
	require.Zero(t, page.Total)
}

func TestRepository_PlaceDuplicateNumberLeavesStockUntouched(t *testing.T) {
	catalog := catalogmemory.NewRepository()
	repo := NewRepository(catalog)
	ctx := context.Background()
	product := seedProduct(t, catalog, 5)

	_, err := repo.Place(ctx, pendingOrder("ORD-1", 1, product.ID), nil)
	require.NoError(t, err)

	change := catalogports.StockChange{ProductID: product.ID, Stock: 1, ExpectedVersion: product.Version}
	_, err = repo.Place(ctx, pendingOrder("ORD-1", 1, product.ID), []catalogports.StockChange{change})
	require.ErrorIs(t, err, ports.ErrDuplicateOrderNumber)

	stored, err := catalog.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, int32(5), stored.Stock)
}

func TestRepository_TransitionIsVersionChecked(t *testing.T) {
	catalog := catalogmemory.NewRepository()
	repo := NewRepository(catalog)
	ctx := context.Background()
	product := seedProduct(t, catalog, 5)
	saved, err := repo.Place(ctx, pendingOrder("ORD-1", 1, product.ID), nil)
	require.NoError(t, err)

	first := saved.Clone()
	first.Status = domain.StatusProcessing
	updated, err := repo.Transition(ctx, first, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.Version)

	stale := saved.Clone()
	stale.Status = domain.StatusCancelled
	_, err = repo.Transition(ctx, stale, nil)
	require.ErrorIs(t, err, optimistic.ErrVersionConflict)

	_, err = repo.Transition(ctx, &domain.Order{ID: 99}, nil)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ListNewestFirst(t *testing.T) {
	catalog := catalogmemory.NewRepository()
	repo := NewRepository(catalog)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	for i, user := range []int64{1, 2, 1} {
		_, err := repo.Place(ctx, pendingOrder("ORD-"+string(rune('A'+i)), user, 1), nil)
		require.NoError(t, err)
	}

	mine, err := repo.ListByUser(ctx, 1, projection.Page{Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), mine.Total)
	require.Equal(t, "ORD-C", mine.Items[0].Number)
	require.Equal(t, "ORD-A", mine.Items[1].Number)

	all, err := repo.List(ctx, projection.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), all.Total)
	require.Len(t, all.Items, 1)
	require.Equal(t, "ORD-A", all.Items[0].Number)
}
