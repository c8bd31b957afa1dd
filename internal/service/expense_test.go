package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/mocks"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

type ExpenseServiceTestSuite struct {
	suite.Suite
	mockRepo      *mocks.Repository
	mockExpense   *mocks.ExpenseRepository
	mockPublisher *mocks.EventPublisher
	service       *ExpenseService
}

func (s *ExpenseServiceTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockExpense = new(mocks.ExpenseRepository)
	s.mockPublisher = new(mocks.EventPublisher)

	s.mockRepo.On("Expense").Return(s.mockExpense)

	s.service = NewExpenseService(s.mockRepo, logger.NewNop())
	s.service.SetEventPublisher(s.mockPublisher)
}

func TestExpenseService(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}

func (s *ExpenseServiceTestSuite) TestCreate_UsesBoundTenantAndPublishes() {
	// Arrange
	ctx := utils.WithTenantID(context.Background(), "acme")
	s.mockExpense.On("Create", ctx, "acme", mock.AnythingOfType("*domain.Expense")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*domain.Expense).ID = 1
		}).
		Return(nil)
	s.mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e *dto.ExpenseEvent) bool {
		return e.TenantID == "acme" && e.Action == dto.ExpenseCreated && e.Expense.ID == 1
	})).Return(nil)

	// Act
	resp, err := s.service.Create(ctx, dto.CreateExpenseRequest{Description: "Taxi", Amount: 42.50})

	// Assert
	s.NoError(err)
	s.Equal(int64(1), resp.ID)
	s.Equal("Taxi", resp.Description)
	s.Equal(42.5, resp.Amount)
	s.mockExpense.AssertExpectations(s.T())
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *ExpenseServiceTestSuite) TestList_UnboundContextUsesPublic() {
	ctx := context.Background()
	filter := domain.ExpenseFilter{Page: 1, PageSize: 20}
	s.mockExpense.On("List", ctx, "public", filter).Return(&domain.ExpensePage{
		Items:    []domain.Expense{{ID: 2, Description: "Hotel", Amount: 120}},
		Page:     1,
		PageSize: 20,
		Total:    1,
	}, nil)

	resp, err := s.service.List(ctx, filter)

	s.NoError(err)
	s.Len(resp.Items, 1)
	s.Equal(int64(1), resp.Total)
	s.Equal("Hotel", resp.Items[0].Description)
}

func (s *ExpenseServiceTestSuite) TestCreate_PublishFailureIsNotFatal() {
	ctx := utils.WithTenantID(context.Background(), "acme")
	s.mockExpense.On("Create", ctx, "acme", mock.Anything).Return(nil)
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(errors.New("redis down"))

	_, err := s.service.Create(ctx, dto.CreateExpenseRequest{Description: "Coffee", Amount: 3})

	s.NoError(err)
}

func (s *ExpenseServiceTestSuite) TestDelete_NotFoundDoesNotPublish() {
	ctx := utils.WithTenantID(context.Background(), "acme")
	s.mockExpense.On("Delete", ctx, "acme", int64(9)).Return(domain.ErrExpenseNotFound)

	err := s.service.Delete(ctx, 9)

	s.ErrorIs(err, domain.ErrExpenseNotFound)
	s.mockPublisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *ExpenseServiceTestSuite) TestDeleteAll() {
	ctx := utils.WithTenantID(context.Background(), "acme")
	s.mockExpense.On("DeleteAll", ctx, "acme").Return(int64(30), nil)
	s.mockPublisher.On("Publish", ctx, mock.MatchedBy(func(e *dto.ExpenseEvent) bool {
		return e.Action == dto.ExpensePurged && e.Deleted == 30
	})).Return(nil)

	deleted, err := s.service.DeleteAll(ctx)

	s.NoError(err)
	s.Equal(int64(30), deleted)
}

func (s *ExpenseServiceTestSuite) TestCurrentTenant() {
	s.Equal("public", s.service.CurrentTenant(context.Background()))
	s.Equal("acme", s.service.CurrentTenant(utils.WithTenantID(context.Background(), "acme")))
}
