package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrStockOverflow     = errors.New("stock would exceed the maximum level")
)

// DecreaseStock removes qty units from the product. The product must have been
// read under a version guard so the eventual write can detect concurrent writers.
func DecreaseStock(p *Product, qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock < qty {
		return fmt.Errorf("%w for product: %s. Available: %d, Requested: %d", ErrInsufficientStock, p.Name, p.Stock, qty)
	}
	p.Stock -= qty
	return nil
}

// IncreaseStock returns qty units to the product. Stock is capped at MaxInt32.
func IncreaseStock(p *Product, qty int32) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock > math.MaxInt32-qty {
		return fmt.Errorf("%w for product: %s. Current: %d, Returned: %d", ErrStockOverflow, p.Name, p.Stock, qty)
	}
	p.Stock += qty
	return nil
}
