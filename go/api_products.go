package ordersserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	producthttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
)

// DefaultLowStockThreshold is used when the low-stock report omits a threshold.
const DefaultLowStockThreshold int32 = 10

// ProductsAPI wires HTTP transport with the catalog service.
type ProductsAPI struct {
	service           catalogports.Service
	lowStockThreshold int32
}

// NewProductsAPI creates a ProductsAPI. A non-positive threshold falls back to DefaultLowStockThreshold.
func NewProductsAPI(service catalogports.Service, lowStockThreshold int32) ProductsAPI {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return ProductsAPI{service: service, lowStockThreshold: lowStockThreshold}
}

// Post /api/v1/products
// Add a product to the catalog (admin)
func (api *ProductsAPI) CreateProduct(c *gin.Context) {
	caller, ok := requireAdmin(c)
	if !ok {
		return
	}
	var payload producthttpmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := api.service.CreateProduct(c.Request.Context(), producthttpmapper.ToProductInput(payload), caller.Actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, producthttpmapper.FromDomainProduct(product))
}

// Get /api/v1/products
// Page through active products
func (api *ProductsAPI) ListProducts(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := api.service.ListProducts(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromProductPage(result))
}

// Get /api/v1/products/:productId
// Find product by ID
func (api *ProductsAPI) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProduct(product))
}

// Put /api/v1/products/:productId
// Update a product (admin)
func (api *ProductsAPI) UpdateProduct(c *gin.Context) {
	caller, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload producthttpmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := api.service.UpdateProduct(c.Request.Context(), id, producthttpmapper.ToProductInput(payload), caller.Actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProduct(product))
}

// Delete /api/v1/products/:productId
// Deactivate a product (admin)
func (api *ProductsAPI) DeactivateProduct(c *gin.Context) {
	caller, ok := requireAdmin(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	if err := api.service.DeactivateProduct(c.Request.Context(), id, caller.Actor); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /api/v1/products/low-stock
// Active products at or below the stock threshold (admin)
func (api *ProductsAPI) LowStockProducts(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	threshold := api.lowStockThreshold
	if raw := strings.TrimSpace(c.Query("threshold")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, fmt.Errorf("threshold: %w", err))
			return
		}
		threshold = int32(value)
	}
	products, err := api.service.LowStockProducts(c.Request.Context(), threshold)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromDomainProducts(products))
}
