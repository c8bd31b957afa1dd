package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/repository"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
	"github.com/kingrain94/tenant-expense-api/pkg/metrics"
)

//go:generate mockery --name TenantQueue --output ../mocks
type TenantQueue interface {
	SendProvisionMessage(ctx context.Context, tenantID string) error
	SendExportMessage(ctx context.Context, tenantID string, purge bool) error
}

// TenantService provisions tenant schemas. Provisioning is idempotent and
// serialized per tenant across processes.
type TenantService struct {
	catalog  repository.CatalogRepository
	migrator repository.SchemaMigrator
	queue    TenantQueue
	logger   *logger.Logger
}

func NewTenantService(repo repository.Repository, migrator repository.SchemaMigrator, logger *logger.Logger) *TenantService {
	return &TenantService{
		catalog:  repo.Catalog(),
		migrator: migrator,
		logger:   logger,
	}
}

// SetQueue enables the asynchronous provisioning and export operations.
func (s *TenantService) SetQueue(queue TenantQueue) {
	s.queue = queue
}

// CreateTenant makes sure the tenant's schema and expense table exist.
// Any failure left after the fallbacks is returned as a *domain.ProvisioningError.
func (s *TenantService) CreateTenant(ctx context.Context, tenantID string) error {
	log := s.logger.With(zap.String("tenant", tenantID))

	if err := domain.ValidateTenantID(tenantID); err != nil {
		metrics.ProvisionTotal.WithLabelValues(metrics.ResultFailed).Inc()
		return &domain.ProvisioningError{Tenant: tenantID, Step: "validate", Err: err}
	}

	err := s.catalog.WithLock(ctx, tenantID, func(ctx context.Context) error {
		return s.provision(ctx, tenantID, log)
	})
	if err != nil {
		metrics.ProvisionTotal.WithLabelValues(metrics.ResultFailed).Inc()
		log.Error("Tenant provisioning failed", err)

		var provErr *domain.ProvisioningError
		if errors.As(err, &provErr) {
			return provErr
		}
		return &domain.ProvisioningError{Tenant: tenantID, Step: "lock", Err: err}
	}

	s.catalog.Remember(tenantID)
	return nil
}

func (s *TenantService) provision(ctx context.Context, tenantID string, log *logger.Logger) error {
	exists, err := s.catalog.SchemaExists(ctx, tenantID)
	if err != nil {
		return &domain.ProvisioningError{Tenant: tenantID, Step: "check schema", Err: err}
	}

	if exists {
		log.Info("Schema already exists")
		metrics.ProvisionTotal.WithLabelValues(metrics.ResultExists).Inc()
	} else {
		if err := s.catalog.CreateSchema(ctx, tenantID); err != nil {
			return &domain.ProvisioningError{Tenant: tenantID, Step: "create schema", Err: err}
		}
		log.Info("Created schema")

		if err := s.migrator.Migrate(ctx, tenantID); err != nil {
			log.Error("Migration failed, falling back to direct table creation", err)
		} else {
			log.Info("Applied migrations")
		}
		metrics.ProvisionTotal.WithLabelValues(metrics.ResultOK).Inc()
	}

	return s.ensureTables(ctx, tenantID, log)
}

// ensureTables creates the expense table directly when neither migrations
// nor whoever created the schema did.
func (s *TenantService) ensureTables(ctx context.Context, tenantID string, log *logger.Logger) error {
	exists, err := s.catalog.TableExists(ctx, tenantID, domain.ExpenseTable)
	if err != nil {
		return &domain.ProvisioningError{Tenant: tenantID, Step: "verify tables", Err: err}
	}
	if exists {
		return nil
	}

	log.Warn("Expense table missing, creating it directly")
	if err := s.catalog.CreateExpenseTable(ctx, tenantID); err != nil {
		return &domain.ProvisioningError{Tenant: tenantID, Step: "create table", Err: err}
	}
	log.Info("Created expense table")
	return nil
}

// ProvisionDefaults provisions each tenant in turn. Failures are logged and
// do not stop the remaining tenants.
func (s *TenantService) ProvisionDefaults(ctx context.Context, tenantIDs []string) map[string]error {
	failures := make(map[string]error)
	for _, id := range tenantIDs {
		if err := s.CreateTenant(ctx, id); err != nil {
			s.logger.Error("Failed to provision default tenant", err, zap.String("tenant", id))
			failures[id] = err
			continue
		}
		s.logger.Info("Default tenant ready", zap.String("tenant", id))
	}
	return failures
}

// ListTenants returns every non-system schema.
func (s *TenantService) ListTenants(ctx context.Context) ([]string, error) {
	return s.catalog.ListSchemas(ctx)
}

// ListTables returns the tables of schema. The name is bound as a query
// parameter, so any value is safe to pass.
func (s *TenantService) ListTables(ctx context.Context, schema string) ([]string, error) {
	return s.catalog.ListTables(ctx, schema)
}

// SearchPath reports the search_path of a connection fresh out of the pool.
func (s *TenantService) SearchPath(ctx context.Context) (string, error) {
	return s.catalog.SearchPath(ctx)
}

// EnqueueProvision schedules CreateTenant on the provisioning worker.
func (s *TenantService) EnqueueProvision(ctx context.Context, tenantID string) error {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return err
	}
	if s.queue == nil {
		return ErrQueueUnavailable
	}
	return s.queue.SendProvisionMessage(ctx, tenantID)
}

// EnqueueExport schedules an S3 export of the tenant's expenses.
func (s *TenantService) EnqueueExport(ctx context.Context, tenantID string, purge bool) error {
	if err := domain.ValidateTenantID(tenantID); err != nil {
		return err
	}
	if s.queue == nil {
		return ErrQueueUnavailable
	}

	ok, err := s.catalog.IsProvisioned(ctx, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTenantNotProvisioned
	}
	return s.queue.SendExportMessage(ctx, tenantID, purge)
}
