package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
)

//go:generate mockery --name TenantService --output ../mocks
type TenantService interface {
	CreateTenant(ctx context.Context, tenantID string) error
	ListTenants(ctx context.Context) ([]string, error)
	EnqueueProvision(ctx context.Context, tenantID string) error
	EnqueueExport(ctx context.Context, tenantID string, purge bool) error
}

type TenantHandler struct {
	*BaseHandler
	service TenantService
}

func NewTenantHandler(service TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// CreateTenant godoc
// @Summary Provision a tenant
// @Description Create the tenant's schema and expense table. Safe to repeat. With async=true the work is queued.
// @Tags tenants
// @Produce plain
// @Param tenantId path string true "Tenant identifier"
// @Param async query bool false "Queue provisioning instead of running it inline"
// @Success 200 {string} string "Tenant created: acme"
// @Success 202 {object} dto.AcceptedResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Router /tenants/{tenantId} [post]
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	tenantID := c.Param("tenantId")

	if c.Query("async") == "true" {
		if err := h.service.EnqueueProvision(h.RequestCtx(c), tenantID); err != nil {
			h.WriteError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "queued", TenantID: tenantID})
		return
	}

	if err := h.service.CreateTenant(h.RequestCtx(c), tenantID); err != nil {
		h.WriteError(c, err)
		return
	}

	c.String(http.StatusOK, "Tenant created: %s", tenantID)
}

// ListTenants godoc
// @Summary List tenants
// @Description List every tenant schema, system schemas excluded
// @Tags tenants
// @Produce json
// @Success 200 {array} string
// @Failure 401 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Router /tenants [get]
func (h *TenantHandler) ListTenants(c *gin.Context) {
	tenants, err := h.service.ListTenants(h.RequestCtx(c))
	if err != nil {
		h.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, tenants)
}

// ExportTenant godoc
// @Summary Export a tenant's expenses
// @Description Queue an S3 export of the tenant's expenses, optionally deleting the exported rows afterwards
// @Tags tenants
// @Produce json
// @Param tenantId path string true "Tenant identifier"
// @Param purge query bool false "Delete exported rows once the upload succeeds"
// @Success 202 {object} dto.AcceptedResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router /tenants/{tenantId}/export [post]
func (h *TenantHandler) ExportTenant(c *gin.Context) {
	tenantID := c.Param("tenantId")

	var req dto.ExportTenantRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		return
	}

	if err := h.service.EnqueueExport(h.RequestCtx(c), tenantID, req.Purge); err != nil {
		h.WriteError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: "queued", TenantID: tenantID})
}
