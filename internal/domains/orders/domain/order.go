package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MaxShippingAddressLength bounds the free-form address in characters.
const MaxShippingAddressLength = 500

var (
	ErrEmptyCart              = errors.New("order must contain at least one item")
	ErrInvalidQuantity        = errors.New("item quantity must be greater than zero")
	ErrShippingAddressTooLong = errors.New("shipping address must not exceed 500 characters")
)

// Item is one line of an order. UnitPrice is captured when the order is placed
// and does not follow later product price changes.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
}

// LineTotal is UnitPrice x Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

// Order is the aggregate persisted and loaded together with its items.
// Version increases by one on every committed status write.
type Order struct {
	ID              int64
	Number          string
	UserID          int64
	Total           decimal.Decimal
	Status          Status
	ShippingAddress string
	Items           []Item
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CreatedBy       string
	UpdatedBy       string
	// Unmodified is set on the result of a call that wrote nothing: an
	// idempotent replay or a status update to the current status. Never persisted.
	Unmodified bool `json:"-"`
}

// SumLineTotals adds the exact line totals without intermediate rounding.
func SumLineTotals(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Items != nil {
		clone.Items = make([]Item, len(o.Items))
		copy(clone.Items, o.Items)
	}
	return &clone
}

// ItemCount sums the quantities of all lines.
func (o *Order) ItemCount() int64 {
	var n int64
	for _, item := range o.Items {
		n += int64(item.Quantity)
	}
	return n
}
