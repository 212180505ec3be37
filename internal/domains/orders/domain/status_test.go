package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" shipped ")
	require.NoError(t, err)
	require.Equal(t, StatusShipped, status)

	_, err = ParseStatus("RETURNED")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusDelivered, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusDelivered, StatusPending, false},
		{StatusShipped, StatusProcessing, false},
		{StatusPending, StatusPending, false},
		{StatusPending, StatusCancelled, false},
		{StatusCancelled, StatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			require.Equal(t, tt.want, CanAdvance(tt.from, tt.to))
		})
	}
}

func TestCancellableAndTerminal(t *testing.T) {
	require.True(t, StatusPending.Cancellable())
	require.True(t, StatusProcessing.Cancellable())
	require.False(t, StatusShipped.Cancellable())
	require.False(t, StatusDelivered.Cancellable())
	require.False(t, StatusCancelled.Cancellable())

	require.True(t, StatusDelivered.IsTerminal())
	require.True(t, StatusCancelled.IsTerminal())
	require.False(t, StatusShipped.IsTerminal())
}
