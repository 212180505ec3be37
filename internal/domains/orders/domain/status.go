package domain

import (
	"errors"
	"strings"
)

var ErrInvalidStatus = errors.New("status must be one of PENDING, PROCESSING, SHIPPED, DELIVERED, CANCELLED")

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// progression ranks the forward path; CANCELLED sits outside it.
var progression = map[Status]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseStatus accepts a case-insensitive status name.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s Status) Valid() bool {
	if s == StatusCancelled {
		return true
	}
	_, ok := progression[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether cancellation is permitted from s.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// CanAdvance reports whether an administrative update may move an order from
// one status to another along the forward path. Skipping ahead is allowed.
// CANCELLED is never reached this way; it goes through cancellation.
func CanAdvance(from, to Status) bool {
	fromRank, okFrom := progression[from]
	toRank, okTo := progression[to]
	if !okFrom || !okTo {
		return false
	}
	return toRank > fromRank
}
