package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
)

type provisionChecker interface {
	IsProvisioned(ctx context.Context, tenantID string) (bool, error)
	Forget(tenantID string)
}

// tenantScope runs units of work on connections routed to one tenant schema.
// Nothing runs unless the tenant's schema and expense table both exist;
// otherwise the unqualified table name would fall through to public.
type tenantScope struct {
	provider *ConnectionProvider
	catalog  provisionChecker
}

func (s *tenantScope) run(ctx context.Context, tenantID string, fn func(db *gorm.DB) error) error {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return err
	}

	ok, err := s.catalog.IsProvisioned(ctx, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTenantNotProvisioned, tenantID)
	}

	err = s.provider.WithTenant(ctx, tenantID, func(c *Conn) error {
		return fn(c.DB)
	})
	if isUndefinedTable(err) {
		// Dropped behind our back; the next call re-checks the catalog.
		s.catalog.Forget(tenantID)
	}
	return err
}
