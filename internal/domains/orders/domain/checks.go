package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"

	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	userdomain "github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
)

// Validation predicates. They never perform I/O and only look at data the
// caller already fetched.

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrProductsNotFound       = errors.New("one or more products not found")
	ErrProductUnavailable     = errors.New("product is not available")
	ErrAccessDenied           = errors.New("access denied")
	ErrInvalidStateTransition = errors.New("invalid order state transition")
)

// CheckUserExists fails when the lookup produced no user.
func CheckUserExists(user *userdomain.User, id int64) (*userdomain.User, error) {
	if user == nil {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return user, nil
}

// CheckProductsExist indexes found by id and fails unless every requested id
// is present. Repeated ids count once.
func CheckProductsExist(requested []int64, found []*catalogdomain.Product) (map[int64]*catalogdomain.Product, error) {
	index := make(map[int64]*catalogdomain.Product, len(found))
	for _, p := range found {
		if p != nil {
			index[p.ID] = p
		}
	}
	distinct := make(map[int64]struct{}, len(requested))
	for _, id := range requested {
		distinct[id] = struct{}{}
	}
	if len(distinct) != len(index) {
		return nil, ErrProductsNotFound
	}
	for id := range distinct {
		if _, ok := index[id]; !ok {
			return nil, ErrProductsNotFound
		}
	}
	return index, nil
}

func CheckProductAvailable(p *catalogdomain.Product) error {
	if !p.Active {
		return fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
	}
	return nil
}

func CheckStockSufficient(p *catalogdomain.Product, requested int32) error {
	if p.Stock < requested {
		return fmt.Errorf("%w for product: %s. Available: %d, Requested: %d",
			catalogdomain.ErrInsufficientStock, p.Name, p.Stock, requested)
	}
	return nil
}

func CheckOwnership(o *Order, userID int64) error {
	if o.UserID != userID {
		return ErrAccessDenied
	}
	return nil
}

func CheckCancellable(o *Order) error {
	if !o.Status.Cancellable() {
		return fmt.Errorf("%w: cannot cancel order in status %s", ErrInvalidStateTransition, o.Status)
	}
	return nil
}

// CheckShippingAddress bounds the address length.
func CheckShippingAddress(address string) error {
	if utf8.RuneCountInString(address) > MaxShippingAddressLength {
		return ErrShippingAddressTooLong
	}
	return nil
}
