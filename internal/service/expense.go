package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/repository"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

//go:generate mockery --name EventPublisher --output ../mocks
type EventPublisher interface {
	Publish(ctx context.Context, event *dto.ExpenseEvent) error
}

// ExpenseService serves the expense endpoints. Every call runs against the
// tenant bound to its context.
type ExpenseService struct {
	repo      repository.Repository
	resolver  *utils.TenantResolver
	publisher EventPublisher
	logger    *logger.Logger
}

func NewExpenseService(repo repository.Repository, logger *logger.Logger) *ExpenseService {
	return &ExpenseService{
		repo:     repo,
		resolver: utils.NewTenantResolver(),
		logger:   logger,
	}
}

// SetEventPublisher sets the publisher notified of expense changes
func (s *ExpenseService) SetEventPublisher(publisher EventPublisher) {
	s.publisher = publisher
}

// CurrentTenant returns the tenant a unit of work started from ctx would use.
func (s *ExpenseService) CurrentTenant(ctx context.Context) string {
	return s.resolver.ResolveCurrentTenant(ctx)
}

func (s *ExpenseService) List(ctx context.Context, filter domain.ExpenseFilter) (*dto.ListExpensesResponse, error) {
	page, err := s.repo.Expense().List(ctx, s.CurrentTenant(ctx), filter)
	if err != nil {
		return nil, err
	}
	return dto.FromExpensePage(page), nil
}

func (s *ExpenseService) Create(ctx context.Context, req dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	tenantID := s.CurrentTenant(ctx)
	expense := req.ToExpense()

	if err := s.repo.Expense().Create(ctx, tenantID, expense); err != nil {
		return nil, fmt.Errorf("failed to store expense: %w", err)
	}

	resp := dto.FromExpense(expense)
	s.publish(ctx, &dto.ExpenseEvent{TenantID: tenantID, Action: dto.ExpenseCreated, Expense: resp})
	return resp, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	tenantID := s.CurrentTenant(ctx)
	if err := s.repo.Expense().Delete(ctx, tenantID, id); err != nil {
		return err
	}

	s.publish(ctx, &dto.ExpenseEvent{TenantID: tenantID, Action: dto.ExpenseDeleted, Expense: &dto.ExpenseResponse{ID: id}, Deleted: 1})
	return nil
}

func (s *ExpenseService) DeleteAll(ctx context.Context) (int64, error) {
	tenantID := s.CurrentTenant(ctx)
	deleted, err := s.repo.Expense().DeleteAll(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, &dto.ExpenseEvent{TenantID: tenantID, Action: dto.ExpensePurged, Deleted: deleted})
	return deleted, nil
}

func (s *ExpenseService) publish(ctx context.Context, event *dto.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish expense event",
			zap.String("tenant", event.TenantID),
			zap.String("request_id", utils.GetRequestIDFromContext(ctx)),
			zap.Error(err))
	}
}
