package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/kingrain94/tenant-expense-api/internal/config"
)

type MessageType string

const (
	MessageTypeProvision MessageType = "PROVISION"
	MessageTypeExport    MessageType = "EXPORT"
	MessageTypeCleanup   MessageType = "CLEANUP"
)

type Message struct {
	Type      MessageType `json:"type"`
	TenantID  string      `json:"tenant_id"`
	Timestamp time.Time   `json:"timestamp"`

	// Export: purge exported rows afterwards
	Purge bool `json:"purge,omitempty"`

	// Cleanup: delete every expense with id <= ThroughID
	ThroughID int64 `json:"through_id,omitempty"`
}

type ReceivedMessage struct {
	Message       Message
	ReceiptHandle *string
}

//go:generate mockery --name SQSClient --output ../../mocks
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSService struct {
	client            SQSClient
	provisionQueueURL string
	exportQueueURL    string
	cleanupQueueURL   string
}

func NewSQSService(client SQSClient, config *config.SQSConfig) *SQSService {
	return &SQSService{
		client:            client,
		provisionQueueURL: config.ProvisionQueueURL,
		exportQueueURL:    config.ExportQueueURL,
		cleanupQueueURL:   config.CleanupQueueURL,
	}
}

func (s *SQSService) SendProvisionMessage(ctx context.Context, tenantID string) error {
	msg := Message{
		Type:      MessageTypeProvision,
		TenantID:  tenantID,
		Timestamp: time.Now(),
	}

	return s.sendMessage(ctx, msg, s.provisionQueueURL)
}

func (s *SQSService) SendExportMessage(ctx context.Context, tenantID string, purge bool) error {
	msg := Message{
		Type:      MessageTypeExport,
		TenantID:  tenantID,
		Purge:     purge,
		Timestamp: time.Now(),
	}

	return s.sendMessage(ctx, msg, s.exportQueueURL)
}

func (s *SQSService) SendCleanupMessage(ctx context.Context, tenantID string, throughID int64) error {
	msg := Message{
		Type:      MessageTypeCleanup,
		TenantID:  tenantID,
		ThroughID: throughID,
		Timestamp: time.Now(),
	}

	return s.sendMessage(ctx, msg, s.cleanupQueueURL)
}

func (s *SQSService) sendMessage(ctx context.Context, msg Message, queueURL string) error {
	msgBody, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &sqs.SendMessageInput{
		MessageBody: aws.String(string(msgBody)),
		QueueUrl:    aws.String(queueURL),
	}

	_, err = s.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (s *SQSService) ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]ReceivedMessage, error) {
	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     waitTimeSeconds,
	}

	output, err := s.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	var messages []ReceivedMessage
	for _, msg := range output.Messages {
		var message Message
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		messages = append(messages, ReceivedMessage{
			Message:       message,
			ReceiptHandle: msg.ReceiptHandle,
		})
	}

	return messages, nil
}

func (s *SQSService) DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error {
	input := &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: receiptHandle,
	}

	_, err := s.client.DeleteMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}
