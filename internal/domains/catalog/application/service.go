package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo   ports.Repository
	policy optimistic.Policy
}

type Option func(*Service)

// WithRetryPolicy overrides the bounded retry applied to version-checked writes.
func WithRetryPolicy(policy optimistic.Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, policy: optimistic.DefaultPolicy()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateProduct(ctx context.Context, input ports.ProductInput, actor audit.Actor) (*domain.Product, error) {
	product, err := domain.NewProduct(input.Name, input.Description, input.Category, input.Price, input.Stock)
	if err != nil {
		return nil, mapError(err)
	}
	product.CreatedBy = actor.String()
	product.UpdatedBy = actor.String()
	saved, err := s.repo.Create(ctx, product)
	return saved, mapError(err)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProduct re-reads the product on every attempt so the write is based on the latest version.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ports.ProductInput, actor audit.Actor) (*domain.Product, error) {
	var updated *domain.Product
	err := optimistic.Run(ctx, s.policy, nil, func(ctx context.Context, _ int) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		current.Name = strings.TrimSpace(input.Name)
		current.Description = strings.TrimSpace(input.Description)
		current.Category = strings.TrimSpace(input.Category)
		current.Price = input.Price
		current.Stock = input.Stock
		current.UpdatedBy = actor.String()
		if err := current.Validate(); err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, current)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// DeactivateProduct hides the product from the active catalog. Existing orders keep referencing it.
func (s *Service) DeactivateProduct(ctx context.Context, id int64, actor audit.Actor) error {
	err := optimistic.Run(ctx, s.policy, nil, func(ctx context.Context, _ int) error {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !current.Active {
			return nil
		}
		current.Active = false
		current.UpdatedBy = actor.String()
		_, err = s.repo.Update(ctx, current)
		return err
	})
	return mapError(err)
}

func (s *Service) ListProducts(ctx context.Context, page projection.Page) (projection.Paged[*domain.Product], error) {
	return s.repo.ListActive(ctx, page.Normalize())
}

func (s *Service) LowStockProducts(ctx context.Context, threshold int32) ([]*domain.Product, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", ErrInvalidInput)
	}
	return s.repo.LowStock(ctx, threshold)
}

var _ ports.Service = (*Service)(nil)
