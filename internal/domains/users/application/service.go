package application

import (
	"context"
	"strings"

	"github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, input ports.RegisterInput, actor audit.Actor) (*domain.User, error) {
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := domain.NewUser(input.Username, input.Email, input.FullName, role)
	if err != nil {
		return nil, mapError(err)
	}
	user.CreatedBy = actor.String()
	user.UpdatedBy = actor.String()
	return s.repo.Create(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, strings.TrimSpace(username))
}

var _ ports.Service = (*Service)(nil)
