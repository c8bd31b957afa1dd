package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/repository"
	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

// CleanupHandler deletes the expenses an export has already written to S3.
type CleanupHandler struct {
	expenses repository.ExpenseRepository
	resolver *utils.TenantResolver
	logger   *logger.Logger
}

func NewCleanupHandler(repo repository.Repository, logger *logger.Logger) *CleanupHandler {
	return &CleanupHandler{
		expenses: repo.Expense(),
		resolver: utils.NewTenantResolver(),
		logger:   logger,
	}
}

func (h *CleanupHandler) Handle(ctx context.Context, msg queue.Message) error {
	if err := expectType(msg, queue.MessageTypeCleanup); err != nil {
		return err
	}

	if err := validateTenant(msg); err != nil {
		return err
	}
	if msg.ThroughID <= 0 {
		h.logger.Warn("Ignoring cleanup without an upper bound", zap.String("tenant", msg.TenantID))
		return nil
	}

	ctx = utils.WithTenantID(ctx, msg.TenantID)
	tenantID := h.resolver.ResolveCurrentTenant(ctx)

	deleted, err := h.expenses.DeleteUpTo(ctx, tenantID, msg.ThroughID)
	if err != nil {
		return fmt.Errorf("failed to delete expenses for tenant %s: %w", tenantID, err)
	}

	h.logger.Info("Deleted exported expenses",
		zap.String("tenant", tenantID),
		zap.Int64("through_id", msg.ThroughID),
		zap.Int64("deleted", deleted))
	return nil
}
