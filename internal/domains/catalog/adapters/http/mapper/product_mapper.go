package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

// ProductRequest is the inbound payload for product create and update.
// Price accepts both JSON numbers and strings.
type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stockQuantity"`
}

// Product is the HTTP representation of a catalog entry.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Price         string    `json:"price"`
	StockQuantity int32     `json:"stockQuantity"`
	Active        bool      `json:"active"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	UpdatedBy     string    `json:"updatedBy,omitempty"`
}

// ProductPage wraps a paged product listing.
type ProductPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	Size       int       `json:"size"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"totalPages"`
}

func ToProductInput(req ProductRequest) ports.ProductInput {
	return ports.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
	}
}

// FromDomainProduct renders money with two decimal places.
func FromDomainProduct(p *domain.Product) Product {
	return Product{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Price:         p.Price.StringFixed(2),
		StockQuantity: p.Stock,
		Active:        p.Active,
		Version:       p.Version,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		CreatedBy:     p.CreatedBy,
		UpdatedBy:     p.UpdatedBy,
	}
}

func FromDomainProducts(list []*domain.Product) []Product {
	out := make([]Product, 0, len(list))
	for _, p := range list {
		out = append(out, FromDomainProduct(p))
	}
	return out
}

func FromProductPage(page projection.Paged[*domain.Product]) ProductPage {
	return ProductPage{
		Items:      FromDomainProducts(page.Items),
		Page:       page.Page.Number,
		Size:       page.Page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages(),
	}
}
