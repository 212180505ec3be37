package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectRejectsEmptyAddress(t *testing.T) {
	_, err := Connect(context.Background(), Options{})
	require.Error(t, err)
}

func TestConnectFromConfigFallsBackWithoutAddress(t *testing.T) {
	client, cleanup := ConnectFromConfig(context.Background(), nil, Options{})
	require.Nil(t, client)
	require.NotNil(t, cleanup)
	cleanup()
}
