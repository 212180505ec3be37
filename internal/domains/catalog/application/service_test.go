package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/memory"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

// racingRepo bumps the stored version right before each update, simulating a concurrent writer.
type racingRepo struct {
	*catalogmemory.Repository
	races int
}

func (r *racingRepo) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	if r.races > 0 {
		r.races--
		current, err := r.Repository.GetByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if _, err := r.Repository.Update(ctx, current); err != nil {
			return nil, err
		}
	}
	return r.Repository.Update(ctx, p)
}

func validInput() ports.ProductInput {
	return ports.ProductInput{Name: "Kettle", Category: "kitchen", Price: decimal.RequireFromString("35.50"), Stock: 12}
}

func TestCreateProduct_RecordsActor(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())

	p, err := svc.CreateProduct(context.Background(), validInput(), audit.NewActor("alice"))
	require.NoError(t, err)
	require.Equal(t, "alice", p.CreatedBy)
	require.Equal(t, "alice", p.UpdatedBy)
	require.True(t, p.Active)
}

func TestCreateProduct_InvalidInput(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())
	input := validInput()
	input.Price = decimal.Zero

	_, err := svc.CreateProduct(context.Background(), input, audit.System)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestUpdateProduct_RetriesOnConcurrentWrite(t *testing.T) {
	repo := &racingRepo{Repository: catalogmemory.NewRepository(), races: 1}
	svc := NewService(repo, WithRetryPolicy(optimistic.Policy{MaxAttempts: 3, Backoff: time.Millisecond}))
	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, validInput(), audit.System)
	require.NoError(t, err)

	input := validInput()
	input.Stock = 40
	updated, err := svc.UpdateProduct(ctx, created.ID, input, audit.NewActor("bob"))
	require.NoError(t, err)
	require.Equal(t, int32(40), updated.Stock)
	require.Equal(t, int64(2), updated.Version)
	require.Equal(t, "bob", updated.UpdatedBy)
}

func TestUpdateProduct_GivesUpAfterPolicy(t *testing.T) {
	repo := &racingRepo{Repository: catalogmemory.NewRepository(), races: 10}
	svc := NewService(repo, WithRetryPolicy(optimistic.Policy{MaxAttempts: 2}))
	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, validInput(), audit.System)
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, created.ID, validInput(), audit.System)
	require.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())
	_, err := svc.UpdateProduct(context.Background(), 99, validInput(), audit.System)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeactivateProduct_HidesFromListing(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())
	ctx := context.Background()
	created, err := svc.CreateProduct(ctx, validInput(), audit.System)
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateProduct(ctx, created.ID, audit.System))
	require.NoError(t, svc.DeactivateProduct(ctx, created.ID, audit.System))

	page, err := svc.ListProducts(ctx, projection.Page{})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	stored, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, stored.Active)
}

func TestLowStockProducts(t *testing.T) {
	svc := NewService(catalogmemory.NewRepository())
	ctx := context.Background()
	input := validInput()
	input.Stock = 2
	_, err := svc.CreateProduct(ctx, input, audit.System)
	require.NoError(t, err)

	list, err := svc.LowStockProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.LowStockProducts(ctx, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}
