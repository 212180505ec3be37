//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "storefront-web"

	StateCatalogStocked = "user 1 exists and product 1 has 10 units at 25.00"
	StateLastUnit       = "user 1 exists and product 1 has 1 unit"
	StateOrderExists    = "order 1 of user 1 exists"
	StateNoOrders       = "no orders exist"
)

const (
	CustomerID     int64 = 1
	ProductID      int64 = 1
	ExistingOrder  int64 = 1
	MissingOrder   int64 = 404
	ProductPrice         = "25.00"
	InitialStock   int32 = 10
	ExampleAddress       = "221B Baker Street, London"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCart provides stable cart data for placement interactions.
func ExampleCart(quantity int32) map[string]any {
	return map[string]any{
		"items":           []map[string]any{{"productId": ProductID, "quantity": quantity}},
		"shippingAddress": ExampleAddress,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
