package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	usersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/memory"
	usersapp "github.com/Apurer/go-gin-orders-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
)

func TestUsers_Lookup(t *testing.T) {
	svc := usersapp.NewService(usersmemory.NewRepository())
	ctx := context.Background()
	created, err := svc.Register(ctx, userports.RegisterInput{Username: "alice"}, audit.System)
	require.NoError(t, err)

	dir := NewUsers(svc)
	user, err := dir.Lookup(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	missing, err := dir.Lookup(ctx, created.ID+1)
	require.NoError(t, err)
	require.Nil(t, missing)
}
