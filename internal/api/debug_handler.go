package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
)

//go:generate mockery --name CatalogService --output ../mocks
type CatalogService interface {
	ListTenants(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]string, error)
	SearchPath(ctx context.Context) (string, error)
}

// TenantReporter reports the tenant a request is bound to.
type TenantReporter interface {
	CurrentTenant(ctx context.Context) string
}

// DebugHandler exposes tenancy diagnostics to operators.
type DebugHandler struct {
	*BaseHandler
	catalog CatalogService
	tenants TenantReporter
}

func NewDebugHandler(catalog CatalogService, tenants TenantReporter) *DebugHandler {
	return &DebugHandler{catalog: catalog, tenants: tenants}
}

// CurrentTenant godoc
// @Summary Current tenant
// @Description Report the tenant this request is bound to
// @Tags debug
// @Produce json
// @Param X-Tenant header string false "Tenant identifier, defaults to public"
// @Success 200 {object} dto.CurrentTenantResponse
// @Router /debug/current-tenant [get]
func (h *DebugHandler) CurrentTenant(c *gin.Context) {
	c.JSON(http.StatusOK, dto.CurrentTenantResponse{CurrentTenant: h.tenants.CurrentTenant(h.RequestCtx(c))})
}

// Schemas godoc
// @Summary List schemas
// @Tags debug
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} dto.Error
// @Router /debug/schemas [get]
func (h *DebugHandler) Schemas(c *gin.Context) {
	schemas, err := h.catalog.ListTenants(h.RequestCtx(c))
	if err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, schemas)
}

// Tables godoc
// @Summary List tables of a schema
// @Tags debug
// @Produce json
// @Param schema path string true "Schema name"
// @Success 200 {array} string
// @Failure 500 {object} dto.Error
// @Router /debug/tables/{schema} [get]
func (h *DebugHandler) Tables(c *gin.Context) {
	tables, err := h.catalog.ListTables(h.RequestCtx(c), c.Param("schema"))
	if err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// SearchPath godoc
// @Summary Pooled connection search_path
// @Description Report the search_path of a connection fresh out of the pool
// @Tags debug
// @Produce json
// @Success 200 {object} dto.SearchPathResponse
// @Failure 500 {object} dto.Error
// @Router /debug/search-path [get]
func (h *DebugHandler) SearchPath(c *gin.Context) {
	path, err := h.catalog.SearchPath(h.RequestCtx(c))
	if err != nil {
		h.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SearchPathResponse{SearchPath: path})
}
