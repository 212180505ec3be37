package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

type normalizedPlaceOrderInput struct {
	UserID          int64            `json:"userId"`
	Lines           []normalizedLine `json:"lines"`
	ShippingAddress string           `json:"shippingAddress"`
}

type normalizedLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// FingerprintPlaceOrder builds a deterministic hash of the cart (excluding the idempotency key and actor).
// Line order is significant since lines are never merged.
func FingerprintPlaceOrder(input ports.PlaceOrderInput) (string, error) {
	normalized := normalizedPlaceOrderInput{
		UserID:          input.UserID,
		Lines:           make([]normalizedLine, 0, len(input.Lines)),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
	}
	for _, line := range input.Lines {
		normalized.Lines = append(normalized.Lines, normalizedLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
