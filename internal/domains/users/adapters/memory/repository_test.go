package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
)

func TestRepository_CreateAndLookup(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	user, err := domain.NewUser("Alice", "alice@example.com", "Alice A", domain.RoleCustomer)
	require.NoError(t, err)

	created, err := repo.Create(ctx, user)
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = repo.Create(ctx, user)
	require.ErrorIs(t, err, ports.ErrAlreadyExists)

	_, err = repo.GetByID(ctx, 42)
	require.ErrorIs(t, err, ports.ErrNotFound)
}
