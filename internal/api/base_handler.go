package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/service"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
)

// retryAfterSeconds is advertised when the connection pool is saturated.
const retryAfterSeconds = "1"

type BaseHandler struct{}

// RequestCtx returns the request context enriched with the gin keys set by
// upstream middleware. The tenant binding already lives on the request context.
func (h *BaseHandler) RequestCtx(ginCtx *gin.Context) context.Context {
	ctx := ginCtx.Request.Context()
	for k, v := range ginCtx.Keys {
		contextKey := utils.ContextKey(k)
		if contextKey == utils.TenantIDKey {
			continue
		}
		ctx = context.WithValue(ctx, contextKey, v)
	}
	return ctx
}

// WriteError maps domain failures onto HTTP statuses.
func (h *BaseHandler) WriteError(c *gin.Context, err error) {
	c.JSON(statusFor(c, err), dto.Error{Error: err.Error()})
}

func statusFor(c *gin.Context, err error) int {
	var switchErr *domain.SchemaSwitchError
	switch {
	case errors.Is(err, domain.ErrInvalidTenantID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTenantNotProvisioned), errors.Is(err, domain.ErrExpenseNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPoolExhausted):
		c.Header("Retry-After", retryAfterSeconds)
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrQueueUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &switchErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
