package ordersserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	usersapp "github.com/Apurer/go-gin-orders-api/internal/domains/users/application"
	userports "github.com/Apurer/go-gin-orders-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// retryAfterSeconds is advertised on concurrency conflicts.
const retryAfterSeconds = 1

var responder = apierrors.NewChainedResponder("", mapDomainError)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondError reports transport-level failures such as unparsable bodies or parameters.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	respondProblem(c, problem)
}

// respondServiceError renders application errors from any bounded context.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// mapDomainError classifies errors into problem details. Conflicts are checked
// before not-found and invalid-input since they may wrap either.
func mapDomainError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersapp.ErrConcurrencyConflict),
		errors.Is(err, catalogapp.ErrConcurrencyConflict):
		return apierrors.ErrConcurrencyConflict.
			WithDetail(err.Error()).
			WithExtension(apierrors.RetryAfterExtension, retryAfterSeconds), true
	case errors.Is(err, ordersapp.ErrIdempotencyConflict):
		return apierrors.ErrIdempotencyConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInsufficientStock):
		return apierrors.ErrInsufficientStock.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidStateTransition):
		return apierrors.ErrInvalidStateTransition.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrNotFound),
		errors.Is(err, catalogports.ErrNotFound),
		errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, userports.ErrAlreadyExists):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput),
		errors.Is(err, catalogapp.ErrInvalidInput),
		errors.Is(err, usersapp.ErrInvalidInput),
		errors.Is(err, ordersdomain.ErrInvalidStatus):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
