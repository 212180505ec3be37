package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
)

// RegisterInput carries the attributes of a new account.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Role     string
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input RegisterInput, actor audit.Actor) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
