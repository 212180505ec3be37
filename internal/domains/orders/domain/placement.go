package domain

import (
	"strings"

	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
)

// Line is one requested cart entry. Repeated product ids stay separate lines.
type Line struct {
	ProductID int64
	Quantity  int32
}

// LineProductIDs lists the product ids referenced by lines in request order.
func LineProductIDs(lines []Line) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	return ids
}

// CheckCart rejects carts that cannot form an order before anything is read.
func CheckCart(lines []Line, shippingAddress string) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return CheckShippingAddress(shippingAddress)
}

// Assemble checks every line against the fetched products, decrements their
// stock in place and builds a PENDING order with the current prices captured.
// products must be the index returned by CheckProductsExist. The returned
// slice holds each decremented product once, in first-seen order.
func Assemble(userID int64, lines []Line, products map[int64]*catalogdomain.Product, shippingAddress string) (*Order, []*catalogdomain.Product, error) {
	if err := CheckCart(lines, shippingAddress); err != nil {
		return nil, nil, err
	}
	order := &Order{
		UserID:          userID,
		Status:          StatusPending,
		ShippingAddress: strings.TrimSpace(shippingAddress),
		Items:           make([]Item, 0, len(lines)),
	}
	touched := make([]*catalogdomain.Product, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, nil, ErrProductsNotFound
		}
		if err := CheckProductAvailable(product); err != nil {
			return nil, nil, err
		}
		if err := CheckStockSufficient(product, line.Quantity); err != nil {
			return nil, nil, err
		}
		if err := catalogdomain.DecreaseStock(product, line.Quantity); err != nil {
			return nil, nil, err
		}
		order.Items = append(order.Items, Item{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		})
		if _, dup := seen[product.ID]; !dup {
			seen[product.ID] = struct{}{}
			touched = append(touched, product)
		}
	}
	order.Total = SumLineTotals(order.Items)
	return order, touched, nil
}

// ItemProductIDs lists the distinct product ids of the order's items.
func ItemProductIDs(o *Order) []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, item := range o.Items {
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Restock adds every item's quantity back to its product. The returned slice
// holds each restored product once, in first-seen order.
func Restock(o *Order, products map[int64]*catalogdomain.Product) ([]*catalogdomain.Product, error) {
	touched := make([]*catalogdomain.Product, 0, len(o.Items))
	seen := make(map[int64]struct{}, len(o.Items))
	for _, item := range o.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, ErrProductsNotFound
		}
		if err := catalogdomain.IncreaseStock(product, item.Quantity); err != nil {
			return nil, err
		}
		if _, dup := seen[product.ID]; !dup {
			seen[product.ID] = struct{}{}
			touched = append(touched, product)
		}
	}
	return touched, nil
}
