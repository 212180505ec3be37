package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
)

var (
	// ErrInvalidInput signals the request violated a catalog invariant.
	ErrInvalidInput = errors.New("invalid product input")
	// ErrConcurrencyConflict signals the product kept changing underneath the update.
	ErrConcurrencyConflict = errors.New("product was modified concurrently")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidName) ||
		errors.Is(err, domain.ErrInvalidDescription) ||
		errors.Is(err, domain.ErrInvalidCategory) ||
		errors.Is(err, domain.ErrInvalidPrice) ||
		errors.Is(err, domain.ErrNegativeStock) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, optimistic.ErrVersionConflict) {
		return fmt.Errorf("%w: %w", ErrConcurrencyConflict, err)
	}
	return err
}
