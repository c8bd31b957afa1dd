package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/mocks"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

type TenantServiceTestSuite struct {
	suite.Suite
	mockRepo     *mocks.Repository
	mockCatalog  *mocks.CatalogRepository
	mockMigrator *mocks.SchemaMigrator
	mockQueue    *mocks.TenantQueue
	service      *TenantService
}

func (s *TenantServiceTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockCatalog = new(mocks.CatalogRepository)
	s.mockMigrator = new(mocks.SchemaMigrator)
	s.mockQueue = new(mocks.TenantQueue)

	s.mockRepo.On("Catalog").Return(s.mockCatalog)

	s.service = NewTenantService(s.mockRepo, s.mockMigrator, logger.NewNop())
	s.service.SetQueue(s.mockQueue)
}

func TestTenantService(t *testing.T) {
	suite.Run(t, new(TenantServiceTestSuite))
}

func (s *TenantServiceTestSuite) TestCreateTenant_NewSchema() {
	// Arrange
	ctx := context.Background()
	s.mockCatalog.On("WithLock", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("SchemaExists", mock.Anything, "acme").Return(false, nil)
	s.mockCatalog.On("CreateSchema", mock.Anything, "acme").Return(nil)
	s.mockMigrator.On("Migrate", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("TableExists", mock.Anything, "acme", domain.ExpenseTable).Return(true, nil)
	s.mockCatalog.On("Remember", "acme").Return()

	// Act
	err := s.service.CreateTenant(ctx, "acme")

	// Assert
	s.NoError(err)
	s.mockCatalog.AssertNotCalled(s.T(), "CreateExpenseTable", mock.Anything, mock.Anything)
	s.mockCatalog.AssertExpectations(s.T())
	s.mockMigrator.AssertExpectations(s.T())
}

func (s *TenantServiceTestSuite) TestCreateTenant_MigrationFailureFallsBackToDirectCreate() {
	// Arrange
	ctx := context.Background()
	s.mockCatalog.On("WithLock", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("SchemaExists", mock.Anything, "acme").Return(false, nil)
	s.mockCatalog.On("CreateSchema", mock.Anything, "acme").Return(nil)
	s.mockMigrator.On("Migrate", mock.Anything, "acme").Return(errors.New("goose: checksum mismatch"))
	s.mockCatalog.On("TableExists", mock.Anything, "acme", domain.ExpenseTable).Return(false, nil)
	s.mockCatalog.On("CreateExpenseTable", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("Remember", "acme").Return()

	// Act
	err := s.service.CreateTenant(ctx, "acme")

	// Assert
	s.NoError(err)
	s.mockCatalog.AssertCalled(s.T(), "CreateExpenseTable", mock.Anything, "acme")
	s.mockCatalog.AssertExpectations(s.T())
}

func (s *TenantServiceTestSuite) TestCreateTenant_MigrationSucceededButTableMissing() {
	s.mockCatalog.On("WithLock", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("SchemaExists", mock.Anything, "acme").Return(false, nil)
	s.mockCatalog.On("CreateSchema", mock.Anything, "acme").Return(nil)
	s.mockMigrator.On("Migrate", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("TableExists", mock.Anything, "acme", domain.ExpenseTable).Return(false, nil)
	s.mockCatalog.On("CreateExpenseTable", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("Remember", "acme").Return()

	err := s.service.CreateTenant(context.Background(), "acme")

	s.NoError(err)
	s.mockCatalog.AssertExpectations(s.T())
}

func (s *TenantServiceTestSuite) TestCreateTenant_ExistingSchemaMissingTable() {
	// Arrange
	s.mockCatalog.On("WithLock", mock.Anything, "legacy").Return(nil)
	s.mockCatalog.On("SchemaExists", mock.Anything, "legacy").Return(true, nil)
	s.mockCatalog.On("TableExists", mock.Anything, "legacy", domain.ExpenseTable).Return(false, nil)
	s.mockCatalog.On("CreateExpenseTable", mock.Anything, "legacy").Return(nil)
	s.mockCatalog.On("Remember", "legacy").Return()

	// Act
	err := s.service.CreateTenant(context.Background(), "legacy")

	// Assert
	s.NoError(err)
	s.mockCatalog.AssertNotCalled(s.T(), "CreateSchema", mock.Anything, mock.Anything)
	s.mockMigrator.AssertNotCalled(s.T(), "Migrate", mock.Anything, mock.Anything)
	s.mockCatalog.AssertExpectations(s.T())
}

func (s *TenantServiceTestSuite) TestCreateTenant_IsIdempotent() {
	// Arrange: the first call creates, the second finds everything in place
	s.mockCatalog.On("WithLock", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("SchemaExists", mock.Anything, "acme").Return(false, nil).Once()
	s.mockCatalog.On("SchemaExists", mock.Anything, "acme").Return(true, nil).Once()
	s.mockCatalog.On("CreateSchema", mock.Anything, "acme").Return(nil).Once()
	s.mockMigrator.On("Migrate", mock.Anything, "acme").Return(nil).Once()
	s.mockCatalog.On("TableExists", mock.Anything, "acme", domain.ExpenseTable).Return(true, nil)
	s.mockCatalog.On("Remember", "acme").Return()

	// Act
	first := s.service.CreateTenant(context.Background(), "acme")
	second := s.service.CreateTenant(context.Background(), "acme")

	// Assert
	s.NoError(first)
	s.NoError(second)
	s.mockCatalog.AssertNumberOfCalls(s.T(), "CreateSchema", 1)
	s.mockMigrator.AssertNumberOfCalls(s.T(), "Migrate", 1)
	s.mockCatalog.AssertNotCalled(s.T(), "CreateExpenseTable", mock.Anything, mock.Anything)
}

func (s *TenantServiceTestSuite) TestCreateTenant_InvalidIdentifier() {
	err := s.service.CreateTenant(context.Background(), `x"; DROP SCHEMA public CASCADE; --`)

	var provErr *domain.ProvisioningError
	s.Require().ErrorAs(err, &provErr)
	s.Equal("validate", provErr.Step)
	s.ErrorIs(err, domain.ErrInvalidTenantID)
	s.mockCatalog.AssertNotCalled(s.T(), "WithLock", mock.Anything, mock.Anything)
}

func (s *TenantServiceTestSuite) TestCreateTenant_FallbackFailureIsProvisioningError() {
	s.mockCatalog.On("WithLock", mock.Anything, "acme").Return(nil)
	s.mockCatalog.On("SchemaExists", mock.Anything, "acme").Return(false, nil)
	s.mockCatalog.On("CreateSchema", mock.Anything, "acme").Return(nil)
	s.mockMigrator.On("Migrate", mock.Anything, "acme").Return(errors.New("migration failed"))
	s.mockCatalog.On("TableExists", mock.Anything, "acme", domain.ExpenseTable).Return(false, nil)
	s.mockCatalog.On("CreateExpenseTable", mock.Anything, "acme").Return(errors.New("permission denied for schema acme"))

	err := s.service.CreateTenant(context.Background(), "acme")

	var provErr *domain.ProvisioningError
	s.Require().ErrorAs(err, &provErr)
	s.Equal("create table", provErr.Step)
	s.Contains(err.Error(), "permission denied for schema acme")
	s.mockCatalog.AssertNotCalled(s.T(), "Remember", mock.Anything)
}

func (s *TenantServiceTestSuite) TestCreateTenant_LockFailure() {
	s.mockCatalog.On("WithLock", mock.Anything, "acme").Return(domain.ErrPoolExhausted)

	err := s.service.CreateTenant(context.Background(), "acme")

	var provErr *domain.ProvisioningError
	s.Require().ErrorAs(err, &provErr)
	s.Equal("lock", provErr.Step)
	s.ErrorIs(err, domain.ErrPoolExhausted)
}

func (s *TenantServiceTestSuite) TestProvisionDefaults_ContinuesAfterFailure() {
	s.mockCatalog.On("WithLock", mock.Anything, mock.Anything).Return(nil)
	s.mockCatalog.On("SchemaExists", mock.Anything, "sap").Return(false, errors.New("timeout"))
	s.mockCatalog.On("SchemaExists", mock.Anything, "ibm").Return(true, nil)
	s.mockCatalog.On("TableExists", mock.Anything, "ibm", domain.ExpenseTable).Return(true, nil)
	s.mockCatalog.On("Remember", "ibm").Return()

	failures := s.service.ProvisionDefaults(context.Background(), []string{"sap", "ibm"})

	s.Len(failures, 1)
	s.Contains(failures, "sap")
	s.mockCatalog.AssertCalled(s.T(), "Remember", "ibm")
}

func (s *TenantServiceTestSuite) TestListTenants() {
	s.mockCatalog.On("ListSchemas", mock.Anything).Return([]string{"acme", "public"}, nil)

	tenants, err := s.service.ListTenants(context.Background())

	s.NoError(err)
	s.Equal([]string{"acme", "public"}, tenants)
}

func (s *TenantServiceTestSuite) TestDebugQueries() {
	s.mockCatalog.On("ListTables", mock.Anything, "acme").Return([]string{"expense", "goose_db_version"}, nil)
	s.mockCatalog.On("SearchPath", mock.Anything).Return("public", nil)

	tables, err := s.service.ListTables(context.Background(), "acme")
	s.NoError(err)
	s.Equal([]string{"expense", "goose_db_version"}, tables)

	path, err := s.service.SearchPath(context.Background())
	s.NoError(err)
	s.Equal("public", path)
}

func (s *TenantServiceTestSuite) TestEnqueueProvision() {
	s.mockQueue.On("SendProvisionMessage", mock.Anything, "acme").Return(nil)

	s.NoError(s.service.EnqueueProvision(context.Background(), "acme"))
	s.ErrorIs(s.service.EnqueueProvision(context.Background(), "bad-id"), domain.ErrInvalidTenantID)
	s.mockQueue.AssertNumberOfCalls(s.T(), "SendProvisionMessage", 1)
}

func (s *TenantServiceTestSuite) TestEnqueueExport_RequiresProvisionedTenant() {
	s.mockCatalog.On("IsProvisioned", mock.Anything, "ghost").Return(false, nil)
	s.mockCatalog.On("IsProvisioned", mock.Anything, "acme").Return(true, nil)
	s.mockQueue.On("SendExportMessage", mock.Anything, "acme", true).Return(nil)

	s.ErrorIs(s.service.EnqueueExport(context.Background(), "ghost", true), domain.ErrTenantNotProvisioned)
	s.NoError(s.service.EnqueueExport(context.Background(), "acme", true))
	s.mockQueue.AssertExpectations(s.T())
}

func (s *TenantServiceTestSuite) TestEnqueue_WithoutQueue() {
	svc := NewTenantService(s.mockRepo, s.mockMigrator, logger.NewNop())

	s.ErrorIs(svc.EnqueueProvision(context.Background(), "acme"), ErrQueueUnavailable)
}
