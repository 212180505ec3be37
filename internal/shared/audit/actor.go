// Package audit carries the identity recorded on mutated rows.
package audit

import "strings"

// Actor names whoever initiated a mutation. It is passed explicitly to every
// mutating call and stored in created_by/updated_by columns.
type Actor string

// System is recorded when no caller identity is available.
const System Actor = "system"

// NewActor trims the raw value and falls back to System when empty.
func NewActor(raw string) Actor {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return System
	}
	return Actor(raw)
}

func (a Actor) String() string {
	if a == "" {
		return string(System)
	}
	return string(a)
}
