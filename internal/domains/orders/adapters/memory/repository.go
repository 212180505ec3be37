package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// StockLedger applies version-guarded stock changes and runs commit inside the
// same critical section. The catalog memory repository satisfies it.
type StockLedger interface {
	ApplyStock(changes []catalogports.StockChange, actor string, commit func() error) error
}

// Repository is an in-memory order store whose writes commit together with the
// stock changes they carry.
type Repository struct {
	mu         sync.RWMutex
	orders     map[int64]*domain.Order
	numbers    map[string]int64
	nextID     int64
	nextItemID int64
	stock      StockLedger
	now        func() time.Time
}

func NewRepository(stock StockLedger) *Repository {
	return &Repository{
		orders:  map[int64]*domain.Order{},
		numbers: map[string]int64{},
		stock:   stock,
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Place(_ context.Context, order *domain.Order, stock []catalogports.StockChange) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if r.stock == nil {
		return nil, errors.New("memory order repository has no stock ledger")
	}
	var saved *domain.Order
	err := r.stock.ApplyStock(stock, order.CreatedBy, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, taken := r.numbers[order.Number]; taken {
			return fmt.Errorf("%w: %s", ports.ErrDuplicateOrderNumber, order.Number)
		}
		clone := order.Clone()
		r.nextID++
		clone.ID = r.nextID
		for i := range clone.Items {
			r.nextItemID++
			clone.Items[i].ID = r.nextItemID
			clone.Items[i].OrderID = clone.ID
		}
		now := r.now()
		clone.Version = 0
		clone.CreatedAt = now
		clone.UpdatedAt = now
		r.orders[clone.ID] = clone
		r.numbers[clone.Number] = clone.ID
		saved = clone.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) Transition(_ context.Context, order *domain.Order, stock []catalogports.StockChange) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if r.stock == nil {
		return nil, errors.New("memory order repository has no stock ledger")
	}
	var saved *domain.Order
	err := r.stock.ApplyStock(stock, order.UpdatedBy, func() error {
		r.mu.Lock()
		defer r.mu.Unlock()
		stored, ok := r.orders[order.ID]
		if !ok {
			return ports.ErrNotFound
		}
		if stored.Version != order.Version {
			return fmt.Errorf("order %d: %w", order.ID, optimistic.ErrVersionConflict)
		}
		stored.Status = order.Status
		stored.UpdatedBy = order.UpdatedBy
		stored.UpdatedAt = r.now()
		stored.Version++
		saved = stored.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) ListByUser(_ context.Context, userID int64, page projection.Page) (projection.Paged[*domain.Order], error) {
	return r.list(page, func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *Repository) List(_ context.Context, page projection.Page) (projection.Paged[*domain.Order], error) {
	return r.list(page, func(*domain.Order) bool { return true }), nil
}

func (r *Repository) list(page projection.Page, keep func(*domain.Order) bool) projection.Paged[*domain.Order] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*domain.Order
	for _, order := range r.orders {
		if keep(order) {
			matched = append(matched, order.Clone())
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return projection.Window(matched, page)
}
