package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"

	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
)

// MessageQueue is a mock type for the worker.MessageQueue type
type MessageQueue struct {
	mock.Mock
}

func (m *MessageQueue) ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]queue.ReceivedMessage, error) {
	args := m.Called(ctx, queueURL, maxMessages, waitTimeSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queue.ReceivedMessage), args.Error(1)
}

func (m *MessageQueue) DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error {
	args := m.Called(ctx, queueURL, receiptHandle)
	return args.Error(0)
}

// ObjectUploader is a mock type for the worker.ObjectUploader type
type ObjectUploader struct {
	mock.Mock
}

func (m *ObjectUploader) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

// CleanupQueue is a mock type for the worker.CleanupQueue type
type CleanupQueue struct {
	mock.Mock
}

func (m *CleanupQueue) SendCleanupMessage(ctx context.Context, tenantID string, throughID int64) error {
	args := m.Called(ctx, tenantID, throughID)
	return args.Error(0)
}
