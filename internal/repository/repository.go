package repository

import (
	"context"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
)

// ExpenseRepository reads and writes the expense table of one tenant schema.
// Every call names its tenant explicitly.
type ExpenseRepository interface {
	Count(ctx context.Context, tenantID string) (int64, error)
	List(ctx context.Context, tenantID string, filter domain.ExpenseFilter) (*domain.ExpensePage, error)
	ListAfter(ctx context.Context, tenantID string, afterID int64, limit int) ([]domain.Expense, error)
	Create(ctx context.Context, tenantID string, expense *domain.Expense) error
	CreateBatch(ctx context.Context, tenantID string, expenses []domain.Expense) error
	Delete(ctx context.Context, tenantID string, id int64) error
	DeleteAll(ctx context.Context, tenantID string) (int64, error)
	DeleteUpTo(ctx context.Context, tenantID string, throughID int64) (int64, error)
}

// CatalogRepository answers schema-level questions and performs tenant DDL.
type CatalogRepository interface {
	ListSchemas(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, schema string) ([]string, error)
	SchemaExists(ctx context.Context, schema string) (bool, error)
	TableExists(ctx context.Context, schema, table string) (bool, error)
	CreateSchema(ctx context.Context, schema string) error
	CreateExpenseTable(ctx context.Context, schema string) error
	SearchPath(ctx context.Context) (string, error)
	IsProvisioned(ctx context.Context, tenantID string) (bool, error)
	Remember(tenantID string)
	Forget(tenantID string)
	WithLock(ctx context.Context, tenantID string, fn func(ctx context.Context) error) error
}

// SchemaMigrator applies the versioned migration sequence inside one tenant schema.
type SchemaMigrator interface {
	Migrate(ctx context.Context, tenantID string) error
}

type Repository interface {
	Expense() ExpenseRepository
	Catalog() CatalogRepository
}
