package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
	MaxCategoryLength    = 100
	priceScale           = 2
)

var (
	ErrInvalidName        = errors.New("product name is required and must not exceed 255 characters")
	ErrInvalidDescription = errors.New("product description must not exceed 1000 characters")
	ErrInvalidCategory    = errors.New("product category must not exceed 100 characters")
	ErrInvalidPrice       = errors.New("product price must be positive with at most 2 decimal places")
	ErrNegativeStock      = errors.New("product stock cannot be negative")
)

// Product is the catalog entry whose stock is contended over by order placement.
// Version increases by one on every committed write.
type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int32
	Active      bool
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedBy   string
	UpdatedBy   string
}

// NewProduct builds an active product with validated attributes.
func NewProduct(name, description, category string, price decimal.Decimal, stock int32) (*Product, error) {
	p := &Product{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Price:       price,
		Stock:       stock,
		Active:      true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces the catalog invariants.
func (p *Product) Validate() error {
	if p.Name == "" || utf8.RuneCountInString(p.Name) > MaxNameLength {
		return ErrInvalidName
	}
	if utf8.RuneCountInString(p.Description) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	if utf8.RuneCountInString(p.Category) > MaxCategoryLength {
		return ErrInvalidCategory
	}
	if !p.Price.IsPositive() || !p.Price.Equal(p.Price.Truncate(priceScale)) {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Clone returns a copy safe to hand across store boundaries.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
