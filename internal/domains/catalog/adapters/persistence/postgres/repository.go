package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// productRecord maps the product entity to a relational table.
type productRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	Name        string          `gorm:"column:name;size:255;not null"`
	Description string          `gorm:"column:description;type:text"`
	Category    string          `gorm:"column:category;size:100;index"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int32           `gorm:"column:stock;not null;check:chk_products_stock,stock >= 0;index:idx_products_active_stock,priority:2"`
	Active      bool            `gorm:"column:is_active;not null;index:idx_products_active_stock,priority:1"`
	Version     int64           `gorm:"column:version;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
	CreatedBy   string          `gorm:"column:created_by;size:100"`
	UpdatedBy   string          `gorm:"column:updated_by;size:100"`
}

func (productRecord) TableName() string { return "products" }

// Create inserts a new product at version 0.
func (r *Repository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(product)
	record.Version = 0
	if record.UpdatedBy == "" {
		record.UpdatedBy = record.CreatedBy
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes all mutable columns when the stored version matches product.Version.
func (r *Repository) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&productRecord{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"category":    product.Category,
			"price":       product.Price,
			"stock":       product.Stock,
			"is_active":   product.Active,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now().UTC(),
			"updated_by":  product.UpdatedBy,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, product.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("product %d: %w", product.ID, optimistic.ErrVersionConflict)
	}
	return r.GetByID(ctx, product.ID)
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// FindByIDs loads the distinct products matching ids, capturing their versions.
func (r *Repository) FindByIDs(ctx context.Context, ids []int64) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	distinct := distinctIDs(ids)
	if len(distinct) == 0 {
		return []*domain.Product{}, nil
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", distinct).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// LowStock lists active products at or below threshold, lowest stock first.
func (r *Repository) LowStock(ctx context.Context, threshold int32) ([]*domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []productRecord
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// ListActive returns one page of active products ordered by id.
func (r *Repository) ListActive(ctx context.Context, page projection.Page) (projection.Paged[*domain.Product], error) {
	page = page.Normalize()
	if err := r.ensureDB(); err != nil {
		return projection.Paged[*domain.Product]{}, err
	}
	query := r.db.WithContext(ctx).Model(&productRecord{}).Where("is_active = ?", true).Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return projection.Paged[*domain.Product]{}, err
	}
	var records []productRecord
	if err := query.Order("id").Offset(page.Offset()).Limit(page.Size).Find(&records).Error; err != nil {
		return projection.Paged[*domain.Product]{}, err
	}
	return projection.Paged[*domain.Product]{Items: toDomainList(records), Page: page, Total: total}, nil
}

// ApplyStockChanges runs version-guarded stock writes on tx, which must be an
// open transaction owned by the caller. Rows are touched in ascending id order
// so concurrent transactions lock them in the same sequence.
func ApplyStockChanges(tx *gorm.DB, changes []ports.StockChange, actor string) error {
	ordered := make([]ports.StockChange, len(changes))
	copy(ordered, changes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })
	now := time.Now().UTC()
	for _, change := range ordered {
		result := tx.Model(&productRecord{}).
			Where("id = ? AND version = ?", change.ProductID, change.ExpectedVersion).
			Updates(map[string]any{
				"stock":      change.Stock,
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
				"updated_by": actor,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("product %d: %w", change.ProductID, optimistic.ErrVersionConflict)
		}
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func distinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toRecord(p *domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CreatedBy:   p.CreatedBy,
		UpdatedBy:   p.UpdatedBy,
	}
}

func (r productRecord) toDomain() *domain.Product {
	return &domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		Active:      r.Active,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CreatedBy:   r.CreatedBy,
		UpdatedBy:   r.UpdatedBy,
	}
}

func toDomainList(records []productRecord) []*domain.Product {
	products := make([]*domain.Product, 0, len(records))
	for i := range records {
		products = append(products, records[i].toDomain())
	}
	return products
}
