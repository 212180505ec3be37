package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 100
	MaxEmailLength    = 255
)

var (
	ErrEmptyUsername = errors.New("username is required and must not exceed 100 characters")
	ErrInvalidEmail  = errors.New("email must contain '@' and not exceed 255 characters")
	ErrInvalidRole   = errors.New("role must be CUSTOMER or ADMIN")
)

// Role distinguishes customers from administrators.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts a case-insensitive role name; empty means CUSTOMER.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}

// User is the account that places orders.
type User struct {
	ID        int64
	Username  string
	Email     string
	FullName  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy string
	UpdatedBy string
}

// NewUser builds a user ensuring required invariants.
func NewUser(username, email, fullName string, role Role) (*User, error) {
	user := &User{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		FullName: strings.TrimSpace(fullName),
		Role:     role,
	}
	if user.Role == "" {
		user.Role = RoleCustomer
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate re-applies core invariants for persistence.
func (u *User) Validate() error {
	if u.Username == "" || utf8.RuneCountInString(u.Username) > MaxUsernameLength {
		return ErrEmptyUsername
	}
	if u.Email != "" && (!strings.Contains(u.Email, "@") || utf8.RuneCountInString(u.Email) > MaxEmailLength) {
		return ErrInvalidEmail
	}
	if u.Role != RoleCustomer && u.Role != RoleAdmin {
		return ErrInvalidRole
	}
	return nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
