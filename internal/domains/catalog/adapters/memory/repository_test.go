package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

func seed(t *testing.T, repo *Repository, name string, stock int32) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(name, "", "", decimal.RequireFromString("10.00"), stock)
	require.NoError(t, err)
	saved, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func TestRepository_CreateAssignsIDAndVersion(t *testing.T) {
	repo := NewRepository()
	a := seed(t, repo, "A", 1)
	b := seed(t, repo, "B", 1)
	require.Equal(t, int64(1), a.ID)
	require.Equal(t, int64(2), b.ID)
	require.Zero(t, a.Version)
	require.False(t, a.CreatedAt.IsZero())
}

func TestRepository_UpdateChecksVersion(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	p := seed(t, repo, "A", 5)

	p.Stock = 9
	updated, err := repo.Update(ctx, p)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.Version)

	p.Stock = 1
	_, err = repo.Update(ctx, p)
	require.ErrorIs(t, err, optimistic.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, int32(9), stored.Stock)
}

func TestRepository_FindByIDsSkipsMissingAndDuplicates(t *testing.T) {
	repo := NewRepository()
	a := seed(t, repo, "A", 1)
	list, err := repo.FindByIDs(context.Background(), []int64{a.ID, a.ID, 42})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRepository_LowStockOrdersByStock(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	seed(t, repo, "plenty", 50)
	low := seed(t, repo, "low", 3)
	lowest := seed(t, repo, "lowest", 0)
	inactive := seed(t, repo, "inactive", 1)
	inactive.Active = false
	_, err := repo.Update(ctx, inactive)
	require.NoError(t, err)

	list, err := repo.LowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, lowest.ID, list[0].ID)
	require.Equal(t, low.ID, list[1].ID)
}

func TestRepository_ListActive(t *testing.T) {
	repo := NewRepository()
	for _, name := range []string{"A", "B", "C"} {
		seed(t, repo, name, 1)
	}
	page, err := repo.ListActive(context.Background(), projection.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 1)
	require.Equal(t, "C", page.Items[0].Name)
}

func TestRepository_ApplyStockIsAllOrNothing(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	a := seed(t, repo, "A", 10)
	b := seed(t, repo, "B", 5)

	err := repo.ApplyStock([]ports.StockChange{
		{ProductID: a.ID, Stock: 8, ExpectedVersion: a.Version},
		{ProductID: b.ID, Stock: 4, ExpectedVersion: b.Version + 1},
	}, "tester", nil)
	require.ErrorIs(t, err, optimistic.ErrVersionConflict)

	storedA, _ := repo.GetByID(ctx, a.ID)
	require.Equal(t, int32(10), storedA.Stock)

	commitErr := errors.New("order insert failed")
	err = repo.ApplyStock([]ports.StockChange{ports.StockChangeFor(&domain.Product{ID: a.ID, Stock: 8, Version: a.Version})}, "tester", func() error {
		return commitErr
	})
	require.ErrorIs(t, err, commitErr)
	storedA, _ = repo.GetByID(ctx, a.ID)
	require.Equal(t, int32(10), storedA.Stock)
	require.Equal(t, a.Version, storedA.Version)

	err = repo.ApplyStock([]ports.StockChange{
		{ProductID: a.ID, Stock: 8, ExpectedVersion: a.Version},
		{ProductID: b.ID, Stock: 4, ExpectedVersion: b.Version},
	}, "tester", func() error { return nil })
	require.NoError(t, err)
	storedA, _ = repo.GetByID(ctx, a.ID)
	storedB, _ := repo.GetByID(ctx, b.ID)
	require.Equal(t, int32(8), storedA.Stock)
	require.Equal(t, int32(4), storedB.Stock)
	require.Equal(t, a.Version+1, storedA.Version)
	require.Equal(t, "tester", storedB.UpdatedBy)
}
