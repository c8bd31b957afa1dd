package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kingrain94/tenant-expense-api/internal/utils"
)

// TenantHeader names the request header carrying the tenant identifier.
const TenantHeader = "X-Tenant"

type TenantMiddleware struct{}

func NewTenantMiddleware() *TenantMiddleware {
	return &TenantMiddleware{}
}

// BindTenant binds the request's tenant to its context for the rest of the
// chain. A missing or blank header binds the default tenant. The unbound
// request is restored on every exit path, including panics.
func (m *TenantMiddleware) BindTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := utils.NormalizeTenantHeader(c.GetHeader(TenantHeader))

		original := c.Request
		c.Request = original.WithContext(utils.WithTenantID(original.Context(), tenantID))
		defer func() {
			c.Request = original.WithContext(utils.ClearTenant(original.Context()))
		}()

		c.Next()
	}
}
