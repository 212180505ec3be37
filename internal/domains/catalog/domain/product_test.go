package domain

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewProduct_Valid(t *testing.T) {
	p, err := NewProduct("  Desk Lamp ", "", "lighting", decimal.RequireFromString("19.99"), 4)
	require.NoError(t, err)
	require.Equal(t, "Desk Lamp", p.Name)
	require.True(t, p.Active)
	require.Zero(t, p.Version)
}

func TestNewProduct_Invalid(t *testing.T) {
	cases := map[string]struct {
		name  string
		price string
		stock int32
		want  error
	}{
		"empty name":     {name: " ", price: "1.00", stock: 1, want: ErrInvalidName},
		"long name":      {name: strings.Repeat("x", MaxNameLength+1), price: "1.00", stock: 1, want: ErrInvalidName},
		"zero price":     {name: "a", price: "0", stock: 1, want: ErrInvalidPrice},
		"negative price": {name: "a", price: "-3.10", stock: 1, want: ErrInvalidPrice},
		"sub-cent price": {name: "a", price: "1.001", stock: 1, want: ErrInvalidPrice},
		"negative stock": {name: "a", price: "1.00", stock: -1, want: ErrNegativeStock},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewProduct(tc.name, "", "", decimal.RequireFromString(tc.price), tc.stock)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecreaseStock(t *testing.T) {
	p := &Product{Name: "Widget", Stock: 5}

	require.NoError(t, DecreaseStock(p, 3))
	require.Equal(t, int32(2), p.Stock)

	err := DecreaseStock(p, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Contains(t, err.Error(), "Available: 2, Requested: 3")
	require.Equal(t, int32(2), p.Stock)

	require.ErrorIs(t, DecreaseStock(p, 0), ErrInvalidQuantity)
}

func TestIncreaseStock(t *testing.T) {
	p := &Product{Stock: 0}
	require.NoError(t, IncreaseStock(p, 7))
	require.Equal(t, int32(7), p.Stock)
	require.ErrorIs(t, IncreaseStock(p, -1), ErrInvalidQuantity)
}

func TestIncreaseStock_RejectsOverflow(t *testing.T) {
	p := &Product{Name: "Widget", Stock: math.MaxInt32 - 2}
	require.NoError(t, IncreaseStock(p, 2))
	require.Equal(t, int32(math.MaxInt32), p.Stock)

	err := IncreaseStock(p, 1)
	require.ErrorIs(t, err, ErrStockOverflow)
	require.Equal(t, int32(math.MaxInt32), p.Stock)
}
