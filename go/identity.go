package ordersserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/Apurer/go-gin-orders-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-orders-api/internal/shared/audit"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// Identity headers set by the upstream gateway after authentication.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
	HeaderActor    = "X-Actor"

	HeaderIdempotencyKey = "Idempotency-Key"
)

const callerContextKey = "ordersserver.caller"

// Caller is the identity attached to a request. UserID is zero for anonymous requests.
type Caller struct {
	UserID int64
	Role   userdomain.Role
	Actor  audit.Actor
}

func (c Caller) Authenticated() bool { return c.UserID > 0 }

func (c Caller) IsAdmin() bool { return c.Role == userdomain.RoleAdmin }

// IdentityMiddleware parses the identity headers into a Caller. Malformed headers are rejected.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := parseCaller(c)
		if err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
			c.Abort()
			return
		}
		c.Set(callerContextKey, caller)
		c.Next()
	}
}

func parseCaller(c *gin.Context) (Caller, error) {
	caller := Caller{Role: userdomain.RoleCustomer, Actor: audit.NewActor(c.GetHeader(HeaderActor))}
	if raw := strings.TrimSpace(c.GetHeader(HeaderUserID)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return Caller{}, fmt.Errorf("%s must be a positive integer", HeaderUserID)
		}
		caller.UserID = id
	}
	role, err := userdomain.ParseRole(c.GetHeader(HeaderUserRole))
	if err != nil {
		return Caller{}, fmt.Errorf("%s: %w", HeaderUserRole, err)
	}
	caller.Role = role
	return caller, nil
}

func callerFrom(c *gin.Context) Caller {
	if value, ok := c.Get(callerContextKey); ok {
		if caller, ok := value.(Caller); ok {
			return caller
		}
	}
	caller, _ := parseCaller(c)
	return caller
}

// requireUser aborts with 401 unless the request carries a user id.
func requireUser(c *gin.Context) (Caller, bool) {
	caller := callerFrom(c)
	if !caller.Authenticated() {
		respondProblem(c, apierrors.ErrUnauthorized.WithDetail(HeaderUserID+" header is required"))
		return Caller{}, false
	}
	return caller, true
}

// requireAdmin aborts with 403 unless the caller has the ADMIN role.
func requireAdmin(c *gin.Context) (Caller, bool) {
	caller := callerFrom(c)
	if !caller.IsAdmin() {
		respondProblem(c, apierrors.ErrForbidden.WithDetail("administrator role required"))
		return Caller{}, false
	}
	return caller, true
}
