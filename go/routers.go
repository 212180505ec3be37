package ordersserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine. Middleware
// registered on the engine before this call applies to every route.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	router.Use(IdentityMiddleware())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

// DefaultHandleFunc is the default handler for not yet implemented routes.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ApiHandleFunctions groups the handlers of each API.
type ApiHandleFunctions struct {
	OrdersAPI   OrdersAPI
	ProductsAPI ProductsAPI
	UsersAPI    UsersAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"PlaceOrder", http.MethodPost, "/api/v1/orders", handleFunctions.OrdersAPI.PlaceOrder},
		{"ListUserOrders", http.MethodGet, "/api/v1/orders", handleFunctions.OrdersAPI.ListUserOrders},
		{"ListOrders", http.MethodGet, "/api/v1/orders/all", handleFunctions.OrdersAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/api/v1/orders/:orderId", handleFunctions.OrdersAPI.GetOrder},
		{"GetOrderAdmin", http.MethodGet, "/api/v1/orders/admin/:orderId", handleFunctions.OrdersAPI.GetOrderAdmin},
		{"UpdateOrderStatus", http.MethodPut, "/api/v1/orders/:orderId/status", handleFunctions.OrdersAPI.UpdateOrderStatus},
		{"CancelOrder", http.MethodPut, "/api/v1/orders/:orderId/cancel", handleFunctions.OrdersAPI.CancelOrder},

		{"CreateProduct", http.MethodPost, "/api/v1/products", handleFunctions.ProductsAPI.CreateProduct},
		{"ListProducts", http.MethodGet, "/api/v1/products", handleFunctions.ProductsAPI.ListProducts},
		{"LowStockProducts", http.MethodGet, "/api/v1/products/low-stock", handleFunctions.ProductsAPI.LowStockProducts},
		{"GetProduct", http.MethodGet, "/api/v1/products/:productId", handleFunctions.ProductsAPI.GetProduct},
		{"UpdateProduct", http.MethodPut, "/api/v1/products/:productId", handleFunctions.ProductsAPI.UpdateProduct},
		{"DeactivateProduct", http.MethodDelete, "/api/v1/products/:productId", handleFunctions.ProductsAPI.DeactivateProduct},

		{"RegisterUser", http.MethodPost, "/api/v1/users", handleFunctions.UsersAPI.RegisterUser},
		{"GetUser", http.MethodGet, "/api/v1/users/:userId", handleFunctions.UsersAPI.GetUser},
	}
}
