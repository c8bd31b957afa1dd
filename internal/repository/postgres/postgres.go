package postgres

import (
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/repository"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

type postgresRepository struct {
	provider    *ConnectionProvider
	catalog     *Catalog
	expenseRepo *ExpenseRepository
}

func NewPostgresRepository(db *gorm.DB, cfg *config.Config, poolConfig *config.ConnectionPoolConfig, logger *logger.Logger) (repository.Repository, error) {
	provider, err := NewConnectionProvider(db, poolConfig, logger)
	if err != nil {
		return nil, err
	}
	catalog := NewCatalog(provider, cfg.SchemaCacheTTL, cfg.MigrationLockWait, logger)

	return &postgresRepository{
		provider:    provider,
		catalog:     catalog,
		expenseRepo: NewExpenseRepository(provider, catalog),
	}, nil
}

func (r *postgresRepository) Expense() repository.ExpenseRepository {
	return r.expenseRepo
}

func (r *postgresRepository) Catalog() repository.CatalogRepository {
	return r.catalog
}
