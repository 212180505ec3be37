package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogpostgres "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists order aggregates in PostgreSQL. An order and its items
// are written and loaded explicitly as one unit inside a transaction.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID              int64             `gorm:"primaryKey;column:id"`
	Number          string            `gorm:"column:order_number;size:50;uniqueIndex;not null"`
	UserID          int64             `gorm:"column:user_id;not null;index:idx_orders_user_created,priority:1"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Status          string            `gorm:"column:status;type:varchar(32);not null;index"`
	ShippingAddress string            `gorm:"column:shipping_address;type:text"`
	Version         int64             `gorm:"column:version;not null"`
	CreatedAt       time.Time         `gorm:"column:created_at;index:idx_orders_user_created,priority:2"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
	CreatedBy       string            `gorm:"column:created_by;size:100"`
	UpdatedBy       string            `gorm:"column:updated_by;size:100"`
	Items           []orderItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ID          int64           `gorm:"primaryKey;column:id"`
	OrderID     int64           `gorm:"column:order_id;not null;index"`
	ProductID   int64           `gorm:"column:product_id;not null;index"`
	ProductName string          `gorm:"column:product_name;size:255"`
	Quantity    int32           `gorm:"column:quantity;not null;check:chk_order_items_quantity,quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Position    int             `gorm:"column:position;not null"`
}

func (orderItemRecord) TableName() string { return "order_items" }

// Place applies the stock changes, inserts the order row and then its items,
// all in one transaction.
func (r *Repository) Place(ctx context.Context, order *domain.Order, stock []catalogports.StockChange) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	record.ID = 0
	record.Version = 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := catalogpostgres.ApplyStockChanges(tx, stock, order.CreatedBy); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
			if platformpostgres.IsUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ports.ErrDuplicateOrderNumber, order.Number)
			}
			return err
		}
		items := toItemRecords(record.ID, order.Items)
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		record.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

// Transition applies the stock changes and a version-guarded status write in one transaction.
func (r *Repository) Transition(ctx context.Context, order *domain.Order, stock []catalogports.StockChange) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	var saved *domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := catalogpostgres.ApplyStockChanges(tx, stock, order.UpdatedBy); err != nil {
			return err
		}
		result := tx.Model(&orderRecord{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]any{
				"status":     string(order.Status),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
				"updated_by": order.UpdatedBy,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&orderRecord{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ports.ErrNotFound
			}
			return fmt.Errorf("order %d: %w", order.ID, optimistic.ErrVersionConflict)
		}
		loaded, err := getByID(tx, order.ID)
		if err != nil {
			return err
		}
		saved = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return getByID(r.db.WithContext(ctx), id)
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, page projection.Page) (projection.Paged[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return projection.Paged[*domain.Order]{}, err
	}
	return r.list(ctx, r.db.WithContext(ctx).Model(&orderRecord{}).Where("user_id = ?", userID), page)
}

func (r *Repository) List(ctx context.Context, page projection.Page) (projection.Paged[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return projection.Paged[*domain.Order]{}, err
	}
	return r.list(ctx, r.db.WithContext(ctx).Model(&orderRecord{}), page)
}

func (r *Repository) list(ctx context.Context, query *gorm.DB, page projection.Page) (projection.Paged[*domain.Order], error) {
	page = page.Normalize()
	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return projection.Paged[*domain.Order]{}, err
	}
	var records []orderRecord
	if err := query.Order("created_at DESC, id DESC").Offset(page.Offset()).Limit(page.Size).Find(&records).Error; err != nil {
		return projection.Paged[*domain.Order]{}, err
	}
	if err := loadItems(r.db.WithContext(ctx), records); err != nil {
		return projection.Paged[*domain.Order]{}, err
	}
	items := make([]*domain.Order, 0, len(records))
	for i := range records {
		items = append(items, records[i].toDomain())
	}
	return projection.Paged[*domain.Order]{Items: items, Page: page, Total: total}, nil
}

func getByID(db *gorm.DB, id int64) (*domain.Order, error) {
	var record orderRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	records := []orderRecord{record}
	if err := loadItems(db, records); err != nil {
		return nil, err
	}
	return records[0].toDomain(), nil
}

// loadItems fills the Items of every record with one query.
func loadItems(db *gorm.DB, records []orderRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	var items []orderItemRecord
	if err := db.Where("order_id IN ?", ids).Order("order_id, position").Find(&items).Error; err != nil {
		return err
	}
	byOrder := make(map[int64][]orderItemRecord, len(records))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	for i := range records {
		records[i].Items = byOrder[records[i].ID]
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:              order.ID,
		Number:          order.Number,
		UserID:          order.UserID,
		Total:           order.Total,
		Status:          string(order.Status),
		ShippingAddress: order.ShippingAddress,
		Version:         order.Version,
		CreatedBy:       order.CreatedBy,
		UpdatedBy:       order.UpdatedBy,
	}
}

func toItemRecords(orderID int64, items []domain.Item) []orderItemRecord {
	out := make([]orderItemRecord, 0, len(items))
	for i, item := range items {
		out = append(out, orderItemRecord{
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Position:    i,
		})
	}
	return out
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.Item{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return &domain.Order{
		ID:              r.ID,
		Number:          r.Number,
		UserID:          r.UserID,
		Total:           r.Total,
		Status:          domain.Status(r.Status),
		ShippingAddress: r.ShippingAddress,
		Items:           items,
		Version:         r.Version,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		CreatedBy:       r.CreatedBy,
		UpdatedBy:       r.UpdatedBy,
	}
}
