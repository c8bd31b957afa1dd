package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

//go:generate mockery --name Provisioner --output ../mocks
type Provisioner interface {
	CreateTenant(ctx context.Context, tenantID string) error
}

// ProvisionHandler provisions tenants queued by POST /tenants/{id}?async=true.
type ProvisionHandler struct {
	provisioner Provisioner
	logger      *logger.Logger
}

func NewProvisionHandler(provisioner Provisioner, logger *logger.Logger) *ProvisionHandler {
	return &ProvisionHandler{provisioner: provisioner, logger: logger}
}

func (h *ProvisionHandler) Handle(ctx context.Context, msg queue.Message) error {
	if err := expectType(msg, queue.MessageTypeProvision); err != nil {
		return err
	}
	if err := validateTenant(msg); err != nil {
		return err
	}

	if err := h.provisioner.CreateTenant(ctx, msg.TenantID); err != nil {
		return fmt.Errorf("failed to provision tenant %s: %w", msg.TenantID, err)
	}

	h.logger.Info("Tenant provisioned from queue", zap.String("tenant", msg.TenantID))
	return nil
}
