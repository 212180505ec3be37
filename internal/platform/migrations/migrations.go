package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the users, catalog and orders contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&userRecord{},
		&productRecord{},
		&orderRecord{},
		&orderItemRecord{},
		&idempotencyRecord{},
	)
}

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Username  string    `gorm:"column:username;size:100;uniqueIndex;not null"`
	Email     string    `gorm:"column:email;size:255"`
	FullName  string    `gorm:"column:full_name;size:255"`
	Role      string    `gorm:"column:role;type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy string    `gorm:"column:created_by;size:100"`
	UpdatedBy string    `gorm:"column:updated_by;size:100"`
}

func (userRecord) TableName() string { return "users" }

// Product schema mirrors the catalog Postgres adapter.
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

// Order schema mirrors the orders Postgres adapter.
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

// Order item schema mirrors the orders Postgres adapter.
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

// Idempotency schema mirrors the orders idempotency store.
type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     int64     `gorm:"column:order_id"`
	ExpiresAt   time.Time `gorm:"column:expires_at;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }
