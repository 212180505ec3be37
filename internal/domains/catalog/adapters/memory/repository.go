package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product store with version-checked writes.
type Repository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	nextID   int64
	now      func() time.Time
}

func NewRepository() *Repository {
	return &Repository{products: map[int64]*domain.Product{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := product.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if _, exists := r.products[clone.ID]; exists {
		return nil, fmt.Errorf("product %d already exists", clone.ID)
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	now := r.now()
	clone.Version = 0
	clone.CreatedAt = now
	clone.UpdatedAt = now
	if clone.UpdatedBy == "" {
		clone.UpdatedBy = clone.CreatedBy
	}
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.products[product.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.Version != product.Version {
		return nil, fmt.Errorf("product %d: %w", product.ID, optimistic.ErrVersionConflict)
	}
	clone := product.Clone()
	clone.Version = stored.Version + 1
	clone.CreatedAt = stored.CreatedAt
	clone.CreatedBy = stored.CreatedBy
	clone.UpdatedAt = r.now()
	r.products[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return product.Clone(), nil
}

func (r *Repository) FindByIDs(_ context.Context, ids []int64) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[int64]struct{}, len(ids))
	list := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.products[id]; ok {
			list = append(list, product.Clone())
		}
	}
	return list, nil
}

func (r *Repository) LowStock(_ context.Context, threshold int32) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Product
	for _, product := range r.products {
		if product.Active && product.Stock <= threshold {
			list = append(list, product.Clone())
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Stock == list[j].Stock {
			return list[i].ID < list[j].ID
		}
		return list[i].Stock < list[j].Stock
	})
	return list, nil
}

func (r *Repository) ListActive(_ context.Context, page projection.Page) (projection.Paged[*domain.Product], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var active []*domain.Product
	for _, product := range r.products {
		if product.Active {
			active = append(active, product.Clone())
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return projection.Window(active, page), nil
}

// ApplyStock verifies every change against the stored versions, runs commit, and
// only then writes the new stock levels. Nothing is written when a version
// mismatches or commit fails. The product lock is held throughout so the
// check and the write are a single step.
func (r *Repository) ApplyStock(changes []ports.StockChange, actor string, commit func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, change := range changes {
		stored, ok := r.products[change.ProductID]
		if !ok {
			return ports.ErrNotFound
		}
		if stored.Version != change.ExpectedVersion {
			return fmt.Errorf("product %d: %w", change.ProductID, optimistic.ErrVersionConflict)
		}
		if change.Stock < 0 {
			return fmt.Errorf("product %d: %w", change.ProductID, domain.ErrNegativeStock)
		}
	}
	if commit != nil {
		if err := commit(); err != nil {
			return err
		}
	}
	now := r.now()
	for _, change := range changes {
		stored := r.products[change.ProductID]
		stored.Stock = change.Stock
		stored.Version++
		stored.UpdatedAt = now
		stored.UpdatedBy = actor
	}
	return nil
}
