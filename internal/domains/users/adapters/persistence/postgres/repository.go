package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// Create inserts a user; the unique username index decides duplicates.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(user)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrAlreadyExists
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", strings.TrimSpace(username))
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		CreatedBy: user.CreatedBy,
		UpdatedBy: user.UpdatedBy,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		FullName:  r.FullName,
		Role:      domain.Role(r.Role),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		CreatedBy: r.CreatedBy,
		UpdatedBy: r.UpdatedBy,
	}
}
