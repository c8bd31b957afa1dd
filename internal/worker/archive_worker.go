package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/repository"
	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

const exportPageSize = 500

//go:generate mockery --name ObjectUploader --output ../mocks
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

//go:generate mockery --name CleanupQueue --output ../mocks
type CleanupQueue interface {
	SendCleanupMessage(ctx context.Context, tenantID string, throughID int64) error
}

// ExportDocument is the JSON object written to S3 for one export.
type ExportDocument struct {
	TenantID     string           `json:"tenant_id"`
	ExportedAt   time.Time        `json:"exported_at"`
	ExpenseCount int              `json:"expense_count"`
	ThroughID    int64            `json:"through_id"`
	Expenses     []domain.Expense `json:"expenses"`
}

// ArchiveHandler exports a tenant's expenses to S3 and, on request, queues
// the deletion of what it exported.
type ArchiveHandler struct {
	expenses repository.ExpenseRepository
	uploader ObjectUploader
	cleanup  CleanupQueue
	s3Config *config.S3Config
	resolver *utils.TenantResolver
	logger   *logger.Logger
	now      func() time.Time
}

func NewArchiveHandler(
	repo repository.Repository,
	uploader ObjectUploader,
	cleanup CleanupQueue,
	s3Config *config.S3Config,
	logger *logger.Logger,
) *ArchiveHandler {
	return &ArchiveHandler{
		expenses: repo.Expense(),
		uploader: uploader,
		cleanup:  cleanup,
		s3Config: s3Config,
		resolver: utils.NewTenantResolver(),
		logger:   logger,
		now:      time.Now,
	}
}

func (h *ArchiveHandler) Handle(ctx context.Context, msg queue.Message) error {
	if err := expectType(msg, queue.MessageTypeExport); err != nil {
		return err
	}
	if err := validateTenant(msg); err != nil {
		return err
	}

	ctx = utils.WithTenantID(ctx, msg.TenantID)
	tenantID := h.resolver.ResolveCurrentTenant(ctx)

	expenses, err := h.collect(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to read expenses for tenant %s: %w", tenantID, err)
	}

	if len(expenses) == 0 {
		h.logger.Info("Nothing to export", zap.String("tenant", tenantID))
		return nil
	}

	throughID := expenses[len(expenses)-1].ID
	if err := h.upload(ctx, tenantID, expenses, throughID); err != nil {
		return err
	}

	if !msg.Purge {
		return nil
	}

	// Rows inserted after the export have higher ids and survive the cleanup.
	if err := h.cleanup.SendCleanupMessage(ctx, tenantID, throughID); err != nil {
		return fmt.Errorf("failed to enqueue cleanup message: %w", err)
	}
	h.logger.Info("Enqueued cleanup", zap.String("tenant", tenantID), zap.Int64("through_id", throughID))
	return nil
}

// collect reads every expense of the tenant in ascending id order.
func (h *ArchiveHandler) collect(ctx context.Context, tenantID string) ([]domain.Expense, error) {
	var all []domain.Expense
	var afterID int64
	for {
		page, err := h.expenses.ListAfter(ctx, tenantID, afterID, exportPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
		afterID = page[len(page)-1].ID
	}
}

func (h *ArchiveHandler) upload(ctx context.Context, tenantID string, expenses []domain.Expense, throughID int64) error {
	exportedAt := h.now().UTC()
	key := h.s3Config.ExportKey(tenantID, exportedAt)

	body, err := json.MarshalIndent(ExportDocument{
		TenantID:     tenantID,
		ExportedAt:   exportedAt,
		ExpenseCount: len(expenses),
		ThroughID:    throughID,
		Expenses:     expenses,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}

	_, err = h.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"tenant-id":     tenantID,
			"exported-at":   exportedAt.Format(time.RFC3339),
			"expense-count": strconv.Itoa(len(expenses)),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload export to S3: %w", err)
	}

	h.logger.Info("Uploaded export",
		zap.String("tenant", tenantID),
		zap.String("location", fmt.Sprintf("s3://%s/%s", h.s3Config.BucketName, key)),
		zap.Int("expenses", len(expenses)))
	return nil
}
