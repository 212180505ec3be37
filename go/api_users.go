package ordersserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/users/adapters/http/mapper"
	userdomain "github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// UsersAPI wires HTTP transport with the users bounded context service.
type UsersAPI struct {
	service userports.Service
}

// NewUsersAPI creates a UsersAPI backed by the provided service.
func NewUsersAPI(service userports.Service) UsersAPI {
	return UsersAPI{service: service}
}

// Post /api/v1/users
// Register a user
func (api *UsersAPI) RegisterUser(c *gin.Context) {
	var payload userhttpmapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	caller := callerFrom(c)
	input := userhttpmapper.ToRegisterInput(payload)
	if role, err := userdomain.ParseRole(input.Role); err == nil && role == userdomain.RoleAdmin && !caller.IsAdmin() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("only administrators may register administrators"))
		return
	}
	user, err := api.service.Register(c.Request.Context(), input, caller.Actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Get /api/v1/users/:userId
// Get user by ID
func (api *UsersAPI) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}
