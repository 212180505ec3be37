package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var errOutOfStock = errors.New("out of stock")

func respondWith(t *testing.T, responder *ChainedResponder, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	responder.RespondError(c, err)
	return rec
}

func TestChainedResponderMapsKnownErrors(t *testing.T) {
	responder := NewChainedResponder("https://errors.example.com", func(err error) (ProblemDetail, bool) {
		if errors.Is(err, errOutOfStock) {
			return ErrInsufficientStock.WithDetail(err.Error()), true
		}
		return ProblemDetail{}, false
	})

	rec := respondWith(t, responder, fmt.Errorf("line 1: %w", errOutOfStock))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "https://errors.example.com"+TypeInsufficientStock, problem.Type)
	require.Equal(t, "/api/v1/orders", problem.Instance)
	require.Equal(t, "line 1: out of stock", problem.Detail)
}

func TestResponderFallsBackToInternalError(t *testing.T) {
	rec := respondWith(t, NewChainedResponder(""), errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("Retry-After"))
}

func TestResponderPassesProblemDetailsThrough(t *testing.T) {
	rec := respondWith(t, NewChainedResponder(""), ErrConflict.WithDetail("taken"))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRetryAfterHeader(t *testing.T) {
	problem := ErrConcurrencyConflict.WithExtension(RetryAfterExtension, 1)
	rec := respondWith(t, NewChainedResponder(""), problem)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "1", rec.Header().Get("Retry-After"))
}
