package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
)

// EventPublisher is a mock type for the service.EventPublisher type
type EventPublisher struct {
	mock.Mock
}

func (m *EventPublisher) Publish(ctx context.Context, event *dto.ExpenseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// TenantQueue is a mock type for the service.TenantQueue type
type TenantQueue struct {
	mock.Mock
}

func (m *TenantQueue) SendProvisionMessage(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *TenantQueue) SendExportMessage(ctx context.Context, tenantID string, purge bool) error {
	args := m.Called(ctx, tenantID, purge)
	return args.Error(0)
}

// Provisioner is a mock type for the service.Provisioner type
type Provisioner struct {
	mock.Mock
}

func (m *Provisioner) CreateTenant(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}
