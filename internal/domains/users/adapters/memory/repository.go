package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	byUsername map[string]int64
	nextID     int64
}

func NewRepository() *Repository {
	return &Repository{users: map[int64]*domain.User{}, byUsername: map[string]int64{}}
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalize(user.Username)
	if _, taken := r.byUsername[key]; taken {
		return nil, ports.ErrAlreadyExists
	}
	clone := user.Clone()
	r.nextID++
	clone.ID = r.nextID
	now := time.Now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	r.users[clone.ID] = clone
	r.byUsername[key] = clone.ID
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[normalize(username)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.users[id].Clone(), nil
}
