package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/middleware"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

// maxRequestBodySize bounds every request body.
const maxRequestBodySize = 1 << 20

// TenancyService is what the tenant and debug endpoints need from the provisioning side.
type TenancyService interface {
	TenantService
	CatalogService
}

// ExpenseAPI is what the expense and stream endpoints need from the expense side.
type ExpenseAPI interface {
	ExpenseService
	TenantReporter
}

type Server struct {
	tenant     *TenantHandler
	expense    *ExpenseHandler
	debug      *DebugHandler
	websocket  *WebSocketHandler
	auth       *middleware.AuthMiddleware
	rateLimit  *middleware.RateLimitMiddleware
	validation *middleware.ValidationMiddleware
	tenancy    *middleware.TenantMiddleware
	logger     *logger.Logger
}

func NewServer(
	tenantService TenancyService,
	expenseService ExpenseAPI,
	subscriber EventSubscriber,
	auth *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	validation *middleware.ValidationMiddleware,
	tenancy *middleware.TenantMiddleware,
	logger *logger.Logger,
) *Server {
	return &Server{
		tenant:     NewTenantHandler(tenantService),
		expense:    NewExpenseHandler(expenseService),
		debug:      NewDebugHandler(tenantService, expenseService),
		websocket:  NewWebSocketHandler(subscriber, expenseService, logger),
		auth:       auth,
		rateLimit:  rateLimit,
		validation: validation,
		tenancy:    tenancy,
		logger:     logger,
	}
}

// SetupRoutes mounts every tenant-aware route on api. The tenant binder runs
// after request validation and before anything that touches a tenant.
func (s *Server) SetupRoutes(api *gin.RouterGroup) {
	api.Use(middleware.RequestID())
	api.Use(middleware.AccessLog(s.logger))
	api.Use(middleware.Metrics())

	// Apply security middleware first
	api.Use(s.validation.BlockSuspiciousPatterns())
	api.Use(s.validation.ValidateRequestSize(maxRequestBodySize))
	api.Use(s.validation.ValidateContentType("application/json", "text/plain"))
	api.Use(s.validation.ValidateTenantHeader())

	api.Use(s.rateLimit.GlobalRateLimit())
	api.Use(s.tenancy.BindTenant())
	api.Use(s.rateLimit.TenantRateLimit())

	tenants := api.Group("/tenants", s.auth.Operator(domain.RoleAdmin)...)
	{
		tenants.GET("", s.tenant.ListTenants)
		tenants.POST("/:tenantId", s.tenant.CreateTenant)
		tenants.POST("/:tenantId/export", s.tenant.ExportTenant)
	}

	expenses := api.Group("/expenses")
	{
		expenses.GET("", s.expense.ListExpenses)
		expenses.POST("", s.expense.CreateExpense)
		expenses.DELETE("", s.expense.DeleteExpenses)
		expenses.DELETE("/:id", s.expense.DeleteExpense)
		expenses.GET("/stream", s.websocket.HandleWebSocket)
	}

	debug := api.Group("/debug", s.auth.Operator(domain.RoleAdmin, domain.RoleOperator)...)
	{
		debug.GET("/current-tenant", s.debug.CurrentTenant)
		debug.GET("/schemas", s.debug.Schemas)
		debug.GET("/tables/:schema", s.debug.Tables)
		debug.GET("/search-path", s.debug.SearchPath)
	}
}

// Health godoc
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// StopWebSocket disconnects every streaming client.
func (s *Server) StopWebSocket() {
	s.websocket.Stop()
}
