package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("username already exists")
)

type Repository interface {
	// Create fails with ErrAlreadyExists when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
