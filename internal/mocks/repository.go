package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/repository"
)

// Repository is a mock type for the repository.Repository type
type Repository struct {
	mock.Mock
}

func (m *Repository) Expense() repository.ExpenseRepository {
	args := m.Called()
	return args.Get(0).(repository.ExpenseRepository)
}

func (m *Repository) Catalog() repository.CatalogRepository {
	args := m.Called()
	return args.Get(0).(repository.CatalogRepository)
}

// ExpenseRepository is a mock type for the repository.ExpenseRepository type
type ExpenseRepository struct {
	mock.Mock
}

func (m *ExpenseRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ExpenseRepository) List(ctx context.Context, tenantID string, filter domain.ExpenseFilter) (*domain.ExpensePage, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpensePage), args.Error(1)
}

func (m *ExpenseRepository) ListAfter(ctx context.Context, tenantID string, afterID int64, limit int) ([]domain.Expense, error) {
	args := m.Called(ctx, tenantID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *ExpenseRepository) Create(ctx context.Context, tenantID string, expense *domain.Expense) error {
	args := m.Called(ctx, tenantID, expense)
	return args.Error(0)
}

func (m *ExpenseRepository) CreateBatch(ctx context.Context, tenantID string, expenses []domain.Expense) error {
	args := m.Called(ctx, tenantID, expenses)
	return args.Error(0)
}

func (m *ExpenseRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *ExpenseRepository) DeleteAll(ctx context.Context, tenantID string) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ExpenseRepository) DeleteUpTo(ctx context.Context, tenantID string, throughID int64) (int64, error) {
	args := m.Called(ctx, tenantID, throughID)
	return args.Get(0).(int64), args.Error(1)
}

// CatalogRepository is a mock type for the repository.CatalogRepository type
type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) ListSchemas(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *CatalogRepository) ListTables(ctx context.Context, schema string) ([]string, error) {
	args := m.Called(ctx, schema)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *CatalogRepository) SchemaExists(ctx context.Context, schema string) (bool, error) {
	args := m.Called(ctx, schema)
	return args.Bool(0), args.Error(1)
}

func (m *CatalogRepository) TableExists(ctx context.Context, schema, table string) (bool, error) {
	args := m.Called(ctx, schema, table)
	return args.Bool(0), args.Error(1)
}

func (m *CatalogRepository) CreateSchema(ctx context.Context, schema string) error {
	args := m.Called(ctx, schema)
	return args.Error(0)
}

func (m *CatalogRepository) CreateExpenseTable(ctx context.Context, schema string) error {
	args := m.Called(ctx, schema)
	return args.Error(0)
}

func (m *CatalogRepository) SearchPath(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *CatalogRepository) IsProvisioned(ctx context.Context, tenantID string) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *CatalogRepository) Remember(tenantID string) {
	m.Called(tenantID)
}

func (m *CatalogRepository) Forget(tenantID string) {
	m.Called(tenantID)
}

// WithLock records the call and, unless an error is configured, runs fn.
func (m *CatalogRepository) WithLock(ctx context.Context, tenantID string, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, tenantID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// SchemaMigrator is a mock type for the repository.SchemaMigrator type
type SchemaMigrator struct {
	mock.Mock
}

func (m *SchemaMigrator) Migrate(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}
