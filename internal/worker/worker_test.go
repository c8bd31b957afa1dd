package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/tenant-expense-api/internal/config"
	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/mocks"
	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
	"github.com/kingrain94/tenant-expense-api/internal/utils"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

type WorkerTestSuite struct {
	suite.Suite
	mockRepo     *mocks.Repository
	mockExpenses *mocks.ExpenseRepository
	mockQueue    *mocks.MessageQueue
	mockUploader *mocks.ObjectUploader
	mockCleanup  *mocks.CleanupQueue
	s3Config     *config.S3Config
}

func TestWorker(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}

func (s *WorkerTestSuite) SetupTest() {
	s.mockRepo = new(mocks.Repository)
	s.mockExpenses = new(mocks.ExpenseRepository)
	s.mockQueue = new(mocks.MessageQueue)
	s.mockUploader = new(mocks.ObjectUploader)
	s.mockCleanup = new(mocks.CleanupQueue)
	s.s3Config = &config.S3Config{BucketName: "exports", KeyPrefix: "expenses"}

	s.mockRepo.On("Expense").Return(s.mockExpenses)
}

// boundTo matches a context bound to tenantID.
func boundTo(tenantID string) any {
	return mock.MatchedBy(func(ctx context.Context) bool {
		got, ok := utils.TenantIDFromContext(ctx)
		return ok && got == tenantID
	})
}

func (s *WorkerTestSuite) archiveHandler() *ArchiveHandler {
	h := NewArchiveHandler(s.mockRepo, s.mockUploader, s.mockCleanup, s.s3Config, logger.NewNop())
	h.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC) }
	return h
}

func (s *WorkerTestSuite) TestSQSWorker_DeletesOnlyHandledMessages() {
	// Arrange
	provisioner := new(mocks.Provisioner)
	provisioner.On("CreateTenant", mock.Anything, "acme").Return(nil)
	provisioner.On("CreateTenant", mock.Anything, "broken").Return(errors.New("lock timeout"))

	ok, failed := aws.String("r-1"), aws.String("r-2")
	s.mockQueue.On("ReceiveMessages", mock.Anything, "provision-url", int32(defaultMaxMessages), int32(defaultWaitTime)).Return([]queue.ReceivedMessage{
		{Message: queue.Message{Type: queue.MessageTypeProvision, TenantID: "acme"}, ReceiptHandle: ok},
		{Message: queue.Message{Type: queue.MessageTypeProvision, TenantID: "broken"}, ReceiptHandle: failed},
	}, nil)
	s.mockQueue.On("DeleteMessage", mock.Anything, "provision-url", ok).Return(nil)

	w := NewSQSWorker("provision", s.mockQueue, "provision-url", NewProvisionHandler(provisioner, logger.NewNop()), logger.NewNop(), 1, time.Second)

	// Act
	err := w.processMessages(context.Background())

	// Assert
	s.NoError(err)
	s.mockQueue.AssertNumberOfCalls(s.T(), "DeleteMessage", 1)
	provisioner.AssertExpectations(s.T())
}

func (s *WorkerTestSuite) TestSQSWorker_ReceiveFailure() {
	// Arrange
	s.mockQueue.On("ReceiveMessages", mock.Anything, "url", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
	w := NewSQSWorker("cleanup", s.mockQueue, "url", NewCleanupHandler(s.mockRepo, logger.NewNop()), logger.NewNop(), 1, time.Second)

	// Act
	err := w.processMessages(context.Background())

	// Assert
	s.Error(err)
	s.mockQueue.AssertNotCalled(s.T(), "DeleteMessage", mock.Anything, mock.Anything, mock.Anything)
}

func (s *WorkerTestSuite) TestSQSWorker_StartStop() {
	// Arrange
	s.mockQueue.On("ReceiveMessages", mock.Anything, "url", mock.Anything, mock.Anything).Return([]queue.ReceivedMessage{}, nil).Maybe()
	w := NewSQSWorker("cleanup", s.mockQueue, "url", NewCleanupHandler(s.mockRepo, logger.NewNop()), logger.NewNop(), 2, 5*time.Millisecond)

	// Act
	w.Start()
	time.Sleep(20 * time.Millisecond)
	w.Stop()

	// Assert
	s.Error(w.ctx.Err())
}

func (s *WorkerTestSuite) TestProvisionHandler_WrongType() {
	// Arrange
	provisioner := new(mocks.Provisioner)
	h := NewProvisionHandler(provisioner, logger.NewNop())

	// Act
	err := h.Handle(context.Background(), queue.Message{Type: queue.MessageTypeExport, TenantID: "acme"})

	// Assert
	s.ErrorIs(err, ErrMalformedMessage)
	provisioner.AssertNotCalled(s.T(), "CreateTenant", mock.Anything, mock.Anything)
}

func (s *WorkerTestSuite) TestSQSWorker_AcknowledgesUnprocessableMessages() {
	// Arrange
	provisioner := new(mocks.Provisioner)
	provisioner.On("CreateTenant", mock.Anything, "busy").Return(errors.New("lock timeout"))

	wrongType, badTenant, transient := aws.String("r-1"), aws.String("r-2"), aws.String("r-3")
	s.mockQueue.On("ReceiveMessages", mock.Anything, "provision-url", int32(defaultMaxMessages), int32(defaultWaitTime)).Return([]queue.ReceivedMessage{
		{Message: queue.Message{Type: queue.MessageTypeCleanup, TenantID: "acme"}, ReceiptHandle: wrongType},
		{Message: queue.Message{Type: queue.MessageTypeProvision, TenantID: `acme"; DROP SCHEMA public; --`}, ReceiptHandle: badTenant},
		{Message: queue.Message{Type: queue.MessageTypeProvision, TenantID: "busy"}, ReceiptHandle: transient},
	}, nil)
	s.mockQueue.On("DeleteMessage", mock.Anything, "provision-url", wrongType).Return(nil)
	s.mockQueue.On("DeleteMessage", mock.Anything, "provision-url", badTenant).Return(nil)

	w := NewSQSWorker("provision", s.mockQueue, "provision-url", NewProvisionHandler(provisioner, logger.NewNop()), logger.NewNop(), 1, time.Second)

	// Act
	err := w.processMessages(context.Background())

	// Assert
	s.NoError(err)
	s.mockQueue.AssertNumberOfCalls(s.T(), "DeleteMessage", 2)
	s.mockQueue.AssertNotCalled(s.T(), "DeleteMessage", mock.Anything, "provision-url", transient)
	provisioner.AssertNotCalled(s.T(), "CreateTenant", mock.Anything, `acme"; DROP SCHEMA public; --`)
}

func (s *WorkerTestSuite) TestCleanupHandler_InvalidTenantIsMalformed() {
	// Arrange
	h := NewCleanupHandler(s.mockRepo, logger.NewNop())

	// Act
	err := h.Handle(context.Background(), queue.Message{Type: queue.MessageTypeCleanup, TenantID: "1bad", ThroughID: 3})

	// Assert
	s.ErrorIs(err, ErrMalformedMessage)
	s.ErrorIs(err, domain.ErrInvalidTenantID)
	s.mockExpenses.AssertNotCalled(s.T(), "DeleteUpTo", mock.Anything, mock.Anything, mock.Anything)
}

func (s *WorkerTestSuite) TestArchiveHandler_UploadsAndQueuesCleanup() {
	// Arrange
	firstPage := make([]domain.Expense, exportPageSize)
	for i := range firstPage {
		firstPage[i] = domain.Expense{ID: int64(i + 1), Description: "Taxi", Amount: 10}
	}
	secondPage := []domain.Expense{{ID: exportPageSize + 1, Description: "Hotel", Amount: 99.99}}

	s.mockExpenses.On("ListAfter", boundTo("acme"), "acme", int64(0), exportPageSize).Return(firstPage, nil)
	s.mockExpenses.On("ListAfter", boundTo("acme"), "acme", int64(exportPageSize), exportPageSize).Return(secondPage, nil)

	var uploaded *s3.PutObjectInput
	s.mockUploader.On("PutObject", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		uploaded = args.Get(1).(*s3.PutObjectInput)
	}).Return(&s3.PutObjectOutput{}, nil)
	s.mockCleanup.On("SendCleanupMessage", mock.Anything, "acme", int64(exportPageSize+1)).Return(nil)

	// Act
	err := s.archiveHandler().Handle(context.Background(), queue.Message{Type: queue.MessageTypeExport, TenantID: "acme", Purge: true})

	// Assert
	s.Require().NoError(err)
	s.Require().NotNil(uploaded)
	s.Equal("exports", aws.ToString(uploaded.Bucket))
	s.Equal("expenses/acme/expenses_acme_2024-03-01_12-30-00.json", aws.ToString(uploaded.Key))

	body, _ := io.ReadAll(uploaded.Body)
	var doc ExportDocument
	s.NoError(json.NewDecoder(bytes.NewReader(body)).Decode(&doc))
	s.Equal("acme", doc.TenantID)
	s.Equal(exportPageSize+1, doc.ExpenseCount)
	s.Equal(int64(exportPageSize+1), doc.ThroughID)
	s.mockCleanup.AssertExpectations(s.T())
}

func (s *WorkerTestSuite) TestArchiveHandler_NoPurgeNoCleanup() {
	// Arrange
	s.mockExpenses.On("ListAfter", mock.Anything, "acme", int64(0), exportPageSize).Return([]domain.Expense{{ID: 3}}, nil)
	s.mockUploader.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)

	// Act
	err := s.archiveHandler().Handle(context.Background(), queue.Message{Type: queue.MessageTypeExport, TenantID: "acme"})

	// Assert
	s.NoError(err)
	s.mockCleanup.AssertNotCalled(s.T(), "SendCleanupMessage", mock.Anything, mock.Anything, mock.Anything)
}

func (s *WorkerTestSuite) TestArchiveHandler_EmptyTenant() {
	// Arrange
	s.mockExpenses.On("ListAfter", mock.Anything, "acme", int64(0), exportPageSize).Return([]domain.Expense{}, nil)

	// Act
	err := s.archiveHandler().Handle(context.Background(), queue.Message{Type: queue.MessageTypeExport, TenantID: "acme", Purge: true})

	// Assert
	s.NoError(err)
	s.mockUploader.AssertNotCalled(s.T(), "PutObject", mock.Anything, mock.Anything)
	s.mockCleanup.AssertNotCalled(s.T(), "SendCleanupMessage", mock.Anything, mock.Anything, mock.Anything)
}

func (s *WorkerTestSuite) TestArchiveHandler_UploadFailureKeepsRows() {
	// Arrange
	s.mockExpenses.On("ListAfter", mock.Anything, "acme", int64(0), exportPageSize).Return([]domain.Expense{{ID: 3}}, nil)
	s.mockUploader.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	// Act
	err := s.archiveHandler().Handle(context.Background(), queue.Message{Type: queue.MessageTypeExport, TenantID: "acme", Purge: true})

	// Assert
	s.Error(err)
	s.mockCleanup.AssertNotCalled(s.T(), "SendCleanupMessage", mock.Anything, mock.Anything, mock.Anything)
}

func (s *WorkerTestSuite) TestArchiveHandler_RejectsBlankTenant() {
	// Act
	err := s.archiveHandler().Handle(context.Background(), queue.Message{Type: queue.MessageTypeExport})

	// Assert
	s.ErrorIs(err, domain.ErrInvalidTenantID)
	s.mockExpenses.AssertNotCalled(s.T(), "ListAfter", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *WorkerTestSuite) TestCleanupHandler_DeletesThroughID() {
	// Arrange
	s.mockExpenses.On("DeleteUpTo", boundTo("acme"), "acme", int64(42)).Return(int64(42), nil)
	h := NewCleanupHandler(s.mockRepo, logger.NewNop())

	// Act
	err := h.Handle(context.Background(), queue.Message{Type: queue.MessageTypeCleanup, TenantID: "acme", ThroughID: 42})

	// Assert
	s.NoError(err)
	s.mockExpenses.AssertExpectations(s.T())
}

func (s *WorkerTestSuite) TestCleanupHandler_IgnoresMissingBound() {
	// Arrange
	h := NewCleanupHandler(s.mockRepo, logger.NewNop())

	// Act
	err := h.Handle(context.Background(), queue.Message{Type: queue.MessageTypeCleanup, TenantID: "acme"})

	// Assert
	s.NoError(err)
	s.mockExpenses.AssertNotCalled(s.T(), "DeleteUpTo", mock.Anything, mock.Anything, mock.Anything)
}
