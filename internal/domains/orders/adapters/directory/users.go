// Package directory adapts the users bounded context to the lookup the order orchestrator needs.
package directory

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	userdomain "github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
)

var _ ports.UserDirectory = (*Users)(nil)

// Users resolves order owners through the users service.
type Users struct {
	service userports.Service
}

func NewUsers(service userports.Service) *Users {
	return &Users{service: service}
}

// Lookup returns nil without error when the user does not exist.
func (u *Users) Lookup(ctx context.Context, id int64) (*userdomain.User, error) {
	user, err := u.service.GetByID(ctx, id)
	if errors.Is(err, userports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
