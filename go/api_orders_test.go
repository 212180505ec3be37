package ordersserver

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	producthttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/http/mapper"
	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

func cartBody(address string, lines ...orderhttpmapper.OrderLineRequest) orderhttpmapper.PlaceOrderRequest {
	return orderhttpmapper.PlaceOrderRequest{Items: lines, ShippingAddress: address}
}

func TestPlaceOrderCreatesOrderAndDecrementsStock(t *testing.T) {
	s := newTestServer(t)
	userID := s.user(t, "alice")
	a := s.product(t, "A", "100.00", 10)
	b := s.product(t, "B", "50.00", 5)

	rec := s.do(t, http.MethodPost, "/api/v1/orders", cartBody("1 Main St",
		orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 2},
		orderhttpmapper.OrderLineRequest{ProductID: b, Quantity: 1},
	), asUser(userID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	order := decode[orderhttpmapper.Order](t, rec)
	require.Equal(t, "250.00", order.Total)
	require.Equal(t, "PENDING", order.Status)
	require.Equal(t, userID, order.UserID)
	require.Regexp(t, `^ORD-\d+-[0-9A-F]{8}$`, order.OrderNumber)
	require.Len(t, order.Items, 2)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", a), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int32(8), decode[producthttpmapper.Product](t, rec).StockQuantity)
}

func TestPlaceOrderRequiresUser(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/orders", cartBody("x"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
}

func TestMalformedIdentityHeaderIsRejected(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/orders", nil, withHeader(HeaderUserID, "abc"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderErrorMapping(t *testing.T) {
	s := newTestServer(t)
	userID := s.user(t, "alice")
	a := s.product(t, "A", "10.00", 1)

	tests := []struct {
		name        string
		userID      int64
		body        orderhttpmapper.PlaceOrderRequest
		status      int
		problemType string
	}{
		{"empty cart", userID, cartBody("x"), http.StatusBadRequest, apierrors.TypeBadRequest},
		{"unknown product", userID, cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: 404, Quantity: 1}), http.StatusBadRequest, apierrors.TypeBadRequest},
		{"unknown user", 12345, cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 1}), http.StatusNotFound, apierrors.TypeNotFound},
		{"insufficient stock", userID, cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 2}), http.StatusUnprocessableEntity, apierrors.TypeInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/orders", tt.body, asUser(tt.userID))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			problem := decode[apierrors.ProblemDetail](t, rec)
			require.Equal(t, tt.problemType, problem.Type)
			require.Empty(t, rec.Header().Get("Retry-After"))
		})
	}
}

func TestPlaceOrderIdempotencyKey(t *testing.T) {
	s := newTestServer(t)
	userID := s.user(t, "alice")
	a := s.product(t, "A", "10.00", 5)
	body := cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 1})

	first := s.do(t, http.MethodPost, "/api/v1/orders", body, asUser(userID), withHeader(HeaderIdempotencyKey, "k-1"))
	require.Equal(t, http.StatusCreated, first.Code)
	second := s.do(t, http.MethodPost, "/api/v1/orders", body, asUser(userID), withHeader(HeaderIdempotencyKey, "k-1"))
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, decode[orderhttpmapper.Order](t, first).ID, decode[orderhttpmapper.Order](t, second).ID)

	other := cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 2})
	rec := s.do(t, http.MethodPost, "/api/v1/orders", other, asUser(userID), withHeader(HeaderIdempotencyKey, "k-1"))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, apierrors.TypeIdempotencyConflict, decode[apierrors.ProblemDetail](t, rec).Type)
}

func TestCancelOrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.user(t, "alice")
	stranger := s.user(t, "bob")
	a := s.product(t, "A", "10.00", 5)

	rec := s.do(t, http.MethodPost, "/api/v1/orders", cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 3}), asUser(owner))
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID := decode[orderhttpmapper.Order](t, rec).ID
	cancelPath := fmt.Sprintf("/api/v1/orders/%d/cancel", orderID)

	rec = s.do(t, http.MethodPut, cancelPath, nil, asUser(stranger))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, cancelPath, nil, asUser(owner))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "CANCELLED", decode[orderhttpmapper.Order](t, rec).Status)

	rec = s.do(t, http.MethodPut, cancelPath, nil, asUser(owner))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, apierrors.TypeInvalidStateTransition, decode[apierrors.ProblemDetail](t, rec).Type)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", a), nil)
	require.Equal(t, int32(5), decode[producthttpmapper.Product](t, rec).StockQuantity)
}

func TestUpdateOrderStatusRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	owner := s.user(t, "alice")
	a := s.product(t, "A", "10.00", 5)
	rec := s.do(t, http.MethodPost, "/api/v1/orders", cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 1}), asUser(owner))
	orderID := decode[orderhttpmapper.Order](t, rec).ID
	path := fmt.Sprintf("/api/v1/orders/%d/status?status=SHIPPED", orderID)

	rec = s.do(t, http.MethodPut, path, nil, asUser(owner))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, path, nil, asAdmin())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "SHIPPED", decode[orderhttpmapper.Order](t, rec).Status)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status?status=PENDING", orderID), nil, asAdmin())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/status?status=LOST", orderID), nil, asAdmin())
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderListingsAndLookups(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice")
	bob := s.user(t, "bob")
	a := s.product(t, "A", "10.00", 50)
	var aliceOrder int64
	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/api/v1/orders", cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 1}), asUser(alice))
		require.Equal(t, http.StatusCreated, rec.Code)
		aliceOrder = decode[orderhttpmapper.Order](t, rec).ID
	}
	rec := s.do(t, http.MethodPost, "/api/v1/orders", cartBody("x", orderhttpmapper.OrderLineRequest{ProductID: a, Quantity: 1}), asUser(bob))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/orders?page=0&size=2", nil, asUser(alice))
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[orderhttpmapper.OrderPage](t, rec)
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	require.Equal(t, aliceOrder, page.Items[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/orders?page=x", nil, asUser(alice))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/orders/all", nil, asUser(alice))
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/orders/all", nil, asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(4), decode[orderhttpmapper.OrderPage](t, rec).Total)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", aliceOrder), nil, asUser(bob))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", aliceOrder), nil, asUser(alice))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/orders/admin/%d", aliceOrder), nil, asAdmin())
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/orders/admin/9999", nil, asAdmin())
	require.Equal(t, http.StatusNotFound, rec.Code)
}
