package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
	"github.com/Apurer/go-gin-orders-api/internal/shared/projection"
)

const (
	// DefaultIdempotencyTTL is how long a placement key replays its order.
	DefaultIdempotencyTTL = 24 * time.Hour
	// DefaultReservationLease bounds how long a key stays reserved by a placement
	// that never recorded its order.
	DefaultReservationLease = 5 * time.Minute
)

// Service is the order placement orchestrator and lifecycle manager.
type Service struct {
	orders      ports.Repository
	products    ports.ProductReader
	users       ports.UserDirectory
	idempotency ports.IdempotencyStore
	policy      optimistic.Policy
	ttl         time.Duration
	now         func() time.Time
	numbers     domain.NumberGenerator
}

type Option func(*Service)

// WithRetryPolicy overrides the bounded retry wrapped around each transactional unit.
func WithRetryPolicy(policy optimistic.Policy) Option {
	return func(s *Service) { s.policy = policy }
}

func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

func WithIdempotencyTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithNumberGenerator(gen domain.NumberGenerator) Option {
	return func(s *Service) {
		if gen != nil {
			s.numbers = gen
		}
	}
}

// NewService wires the orders service with its collaborators.
func NewService(orders ports.Repository, products ports.ProductReader, users ports.UserDirectory, opts ...Option) *Service {
	s := &Service{
		orders:   orders,
		products: products,
		users:    users,
		policy:   optimistic.DefaultPolicy(),
		ttl:      DefaultIdempotencyTTL,
		now:      time.Now,
		numbers:  domain.NewNumber,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder turns a cart into a PENDING order. Every attempt re-reads the
// user and products; a version conflict at commit re-runs the whole attempt
// until the retry policy is exhausted. With an idempotency key the key is
// reserved first, so a retried request replays the committed order instead of
// placing the cart again.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	if err := domain.CheckCart(input.Lines, input.ShippingAddress); err != nil {
		return nil, mapError(err)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" || s.idempotency == nil {
		placed, err := s.place(ctx, input)
		return placed, mapError(err)
	}

	hash, err := FingerprintPlaceOrder(input)
	if err != nil {
		return nil, err
	}
	now := s.now()
	reservation := ports.IdempotencyRecord{
		Key:         key,
		RequestHash: hash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(min(DefaultReservationLease, s.ttl)),
	}
	stored, claimed, err := s.idempotency.Reserve(ctx, reservation)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return s.replay(ctx, stored, hash)
	}

	placed, err := s.place(ctx, input)
	if err != nil {
		err = mapError(err)
		if placementRejected(err) {
			_ = s.idempotency.Release(context.WithoutCancel(ctx), key, hash)
		}
		return nil, err
	}
	completed := reservation
	completed.OrderID = placed.ID
	completed.ExpiresAt = s.now().Add(s.ttl)
	// The order is committed. A failed write leaves the reservation pending, which
	// answers retries with a conflict until it lapses rather than placing again.
	_ = s.idempotency.Complete(context.WithoutCancel(ctx), completed)
	return placed, nil
}

func (s *Service) place(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	var placed *domain.Order
	err := optimistic.Run(ctx, s.policy, retryable, func(ctx context.Context, _ int) error {
		order, err := s.placeOnce(ctx, input)
		if err != nil {
			return err
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// replay answers a request whose key is already held by a live record.
func (s *Service) replay(ctx context.Context, record *ports.IdempotencyRecord, hash string) (*domain.Order, error) {
	if record.RequestHash != hash {
		return nil, ErrIdempotencyConflict
	}
	if record.Pending() {
		return nil, fmt.Errorf("%w: a placement with this idempotency key is in progress", ErrConcurrencyConflict)
	}
	order, err := s.orders.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	order.Unmodified = true
	return order, nil
}

func (s *Service) placeOnce(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	user, err := s.users.Lookup(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.CheckUserExists(user, input.UserID); err != nil {
		return nil, err
	}
	ids := domain.LineProductIDs(input.Lines)
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	index, err := domain.CheckProductsExist(ids, found)
	if err != nil {
		return nil, err
	}
	order, touched, err := domain.Assemble(user.ID, input.Lines, index, input.ShippingAddress)
	if err != nil {
		return nil, err
	}
	now := s.now()
	order.Number = s.numbers(now)
	order.CreatedBy = input.Actor.String()
	order.UpdatedBy = input.Actor.String()
	return s.orders.Place(ctx, order, stockChanges(touched))
}

// CancelOrder cancels the caller's own order and returns its items to stock.
func (s *Service) CancelOrder(ctx context.Context, orderID, userID int64, actor audit.Actor) (*domain.Order, error) {
	var cancelled *domain.Order
	err := optimistic.Run(ctx, s.policy, retryable, func(ctx context.Context, _ int) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := domain.CheckOwnership(order, userID); err != nil {
			return err
		}
		cancelled, err = s.cancelOnce(ctx, order, actor)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return cancelled, nil
}

func (s *Service) cancelOnce(ctx context.Context, order *domain.Order, actor audit.Actor) (*domain.Order, error) {
	if err := domain.CheckCancellable(order); err != nil {
		return nil, err
	}
	ids := domain.ItemProductIDs(order)
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	index, err := domain.CheckProductsExist(ids, found)
	if err != nil {
		return nil, err
	}
	touched, err := domain.Restock(order, index)
	if err != nil {
		return nil, err
	}
	order.Status = domain.StatusCancelled
	order.UpdatedBy = actor.String()
	return s.orders.Transition(ctx, order, stockChanges(touched))
}

// UpdateOrderStatus is the administrative transition. Only forward moves are
// accepted; CANCELLED runs the cancellation flow without the ownership check
// and requesting the current status is a no-op.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.Status, actor audit.Actor) (*domain.Order, error) {
	if !status.Valid() {
		return nil, mapError(domain.ErrInvalidStatus)
	}
	var updated *domain.Order
	err := optimistic.Run(ctx, s.policy, retryable, func(ctx context.Context, _ int) error {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		switch {
		case order.Status == status:
			order.Unmodified = true
			updated = order
			return nil
		case status == domain.StatusCancelled:
			updated, err = s.cancelOnce(ctx, order, actor)
			return err
		case !domain.CanAdvance(order.Status, status):
			return fmt.Errorf("%w: cannot move order from %s to %s", domain.ErrInvalidStateTransition, order.Status, status)
		}
		order.Status = status
		order.UpdatedBy = actor.String()
		updated, err = s.orders.Transition(ctx, order, nil)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// GetOrder returns the order only when userID owns it.
func (s *Service) GetOrder(ctx context.Context, orderID, userID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := domain.CheckOwnership(order, userID); err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) GetOrderAdmin(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID int64, page projection.Page) (projection.Paged[*domain.Order], error) {
	result, err := s.orders.ListByUser(ctx, userID, page.Normalize())
	if err != nil {
		return projection.Paged[*domain.Order]{}, mapError(err)
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context, page projection.Page) (projection.Paged[*domain.Order], error) {
	result, err := s.orders.List(ctx, page.Normalize())
	if err != nil {
		return projection.Paged[*domain.Order]{}, mapError(err)
	}
	return result, nil
}

func stockChanges(products []*catalogdomain.Product) []catalogports.StockChange {
	changes := make([]catalogports.StockChange, 0, len(products))
	for _, p := range products {
		changes = append(changes, catalogports.StockChangeFor(p))
	}
	return changes
}

var _ ports.Service = (*Service)(nil)
