package mapper

import (
	"time"

	userdomain "github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
)

// RegisterRequest is the inbound payload for account creation.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Role     string `json:"role,omitempty"`
}

// User represents the transport-level user payload.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"fullName,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToRegisterInput(req RegisterRequest) userports.RegisterInput {
	return userports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}
