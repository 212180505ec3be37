package application

import (
	"errors"
	"fmt"

	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
)

var (
	// ErrInvalidInput covers malformed carts, unknown or inactive products and access denial.
	ErrInvalidInput = errors.New("invalid order request")
	// ErrNotFound signals a missing order or user.
	ErrNotFound = errors.New("not found")
	// ErrConcurrencyConflict is returned once the retry policy is exhausted. Callers may retry.
	ErrConcurrencyConflict = errors.New("order could not be committed due to concurrent modification")

	ErrInsufficientStock      = catalogdomain.ErrInsufficientStock
	ErrInvalidStateTransition = domain.ErrInvalidStateTransition
	ErrIdempotencyConflict    = ports.ErrIdempotencyConflict
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConcurrencyConflict):
		return err
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrShippingAddressTooLong),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrProductsNotFound),
		errors.Is(err, domain.ErrProductUnavailable),
		errors.Is(err, domain.ErrAccessDenied),
		errors.Is(err, catalogdomain.ErrStockOverflow):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, optimistic.ErrVersionConflict),
		errors.Is(err, ports.ErrDuplicateOrderNumber):
		return fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
	}
	return err
}

// placementRejected reports whether a mapped placement error guarantees nothing
// was committed, so an idempotency reservation can be released.
func placementRejected(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrConcurrencyConflict)
}

// retryable marks the attempt errors that re-run the whole unit of work.
func retryable(err error) bool {
	return errors.Is(err, optimistic.ErrVersionConflict) || errors.Is(err, ports.ErrDuplicateOrderNumber)
}
