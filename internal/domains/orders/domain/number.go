package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NumberGenerator produces human-readable order numbers. Uniqueness is finally
// enforced by the store's unique index.
type NumberGenerator func(now time.Time) string

// NewNumber returns ORD-<epoch millis>-<8 hex chars>.
func NewNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}
