package ordersserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/directory"
	ordersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	ordersworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	usersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/memory"
	usersapp "github.com/Apurer/go-gin-orders-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	"github.com/Apurer/go-gin-orders-api/internal/shared/optimistic"
)

type testServer struct {
	router  *gin.Engine
	catalog *catalogapp.Service
	users   *usersapp.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalogRepo := catalogmemory.NewRepository()
	catalogService := catalogapp.NewService(catalogRepo)
	userService := usersapp.NewService(usersmemory.NewRepository())
	orderService := ordersapp.NewService(
		ordersmemory.NewRepository(catalogRepo),
		catalogRepo,
		directory.NewUsers(userService),
		ordersapp.WithRetryPolicy(optimistic.Policy{MaxAttempts: 3, Backoff: time.Millisecond}),
		ordersapp.WithIdempotencyStore(ordersmemory.NewIdempotencyStore()),
	)
	handlers := ApiHandleFunctions{
		OrdersAPI:   NewOrdersAPI(orderService, ordersworkflows.NewInlineOrderWorkflows(orderService)),
		ProductsAPI: NewProductsAPI(catalogService, 0),
		UsersAPI:    NewUsersAPI(userService),
	}
	return &testServer{
		router:  NewRouter(handlers),
		catalog: catalogService,
		users:   userService,
	}
}

func (s *testServer) user(t *testing.T, name string) int64 {
	t.Helper()
	u, err := s.users.Register(context.Background(), userports.RegisterInput{Username: name}, audit.System)
	require.NoError(t, err)
	return u.ID
}

func (s *testServer) product(t *testing.T, name, price string, stock int32) int64 {
	t.Helper()
	p, err := s.catalog.CreateProduct(context.Background(), catalogports.ProductInput{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}, audit.System)
	require.NoError(t, err)
	return p.ID
}

type requestOption func(*http.Request)

func asUser(id int64) requestOption {
	return func(r *http.Request) { r.Header.Set(HeaderUserID, strconv.FormatInt(id, 10)) }
}

func asAdmin() requestOption {
	return func(r *http.Request) {
		r.Header.Set(HeaderUserID, "999")
		r.Header.Set(HeaderUserRole, "ADMIN")
		r.Header.Set(HeaderActor, "ops")
	}
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (s *testServer) do(t *testing.T, method, path string, body any, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
