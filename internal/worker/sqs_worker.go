package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/tenant-expense-api/internal/domain"
	"github.com/kingrain94/tenant-expense-api/internal/service/queue"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

const (
	defaultMaxMessages = 10 // Process up to 10 messages at a time
	defaultWaitTime    = 20 // Long polling: wait up to 20 seconds for messages
)

//go:generate mockery --name MessageQueue --output ../mocks
type MessageQueue interface {
	ReceiveMessages(ctx context.Context, queueURL string, maxMessages int32, waitTimeSeconds int32) ([]queue.ReceivedMessage, error)
	DeleteMessage(ctx context.Context, queueURL string, receiptHandle *string) error
}

// MessageHandler processes one message. A nil error acknowledges it;
// anything else leaves it on the queue for redelivery.
type MessageHandler interface {
	Handle(ctx context.Context, msg queue.Message) error
}

// SQSWorker polls one queue with a fixed number of goroutines and hands every
// message to its handler.
type SQSWorker struct {
	name         string
	queue        MessageQueue
	queueURL     string
	handler      MessageHandler
	logger       *logger.Logger
	workerCount  int
	pollInterval time.Duration
	maxMessages  int32
	waitTime     int32
	ctx          context.Context
	cancel       context.CancelFunc
	waitGroup    sync.WaitGroup
}

func NewSQSWorker(
	name string,
	queue MessageQueue,
	queueURL string,
	handler MessageHandler,
	logger *logger.Logger,
	workerCount int,
	pollInterval time.Duration,
) *SQSWorker {
	if workerCount <= 0 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SQSWorker{
		name:         name,
		queue:        queue,
		queueURL:     queueURL,
		handler:      handler,
		logger:       logger.With(zap.String("worker", name)),
		workerCount:  workerCount,
		pollInterval: pollInterval,
		maxMessages:  defaultMaxMessages,
		waitTime:     defaultWaitTime,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (w *SQSWorker) Start() {
	w.logger.Info("Starting workers", zap.Int("count", w.workerCount), zap.String("queue", w.queueURL))

	for i := 0; i < w.workerCount; i++ {
		w.waitGroup.Add(1)
		go w.runWorker(i)
	}
}

// Stop cancels in-flight polls and waits for every goroutine to return.
func (w *SQSWorker) Stop() {
	w.logger.Info("Stopping workers")
	w.cancel()
	w.waitGroup.Wait()
	w.logger.Info("All workers stopped")
}

func (w *SQSWorker) runWorker(workerID int) {
	defer w.waitGroup.Done()

	w.logger.Info("Worker started", zap.Int("id", workerID))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("Worker shutting down", zap.Int("id", workerID))
			return
		case <-ticker.C:
			if err := w.processMessages(w.ctx); err != nil && w.ctx.Err() == nil {
				w.logger.Error("Failed to process messages", err, zap.Int("id", workerID))
			}
		}
	}
}

// processMessages handles one received batch.
func (w *SQSWorker) processMessages(ctx context.Context) error {
	messages, err := w.queue.ReceiveMessages(ctx, w.queueURL, w.maxMessages, w.waitTime)
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range messages {
		if err := w.handler.Handle(ctx, msg.Message); err != nil {
			if !isPermanent(err) {
				w.logger.Error("Failed to process message", err,
					zap.String("type", string(msg.Message.Type)),
					zap.String("tenant", msg.Message.TenantID))
				continue
			}
			// Redelivery cannot fix it.
			w.logger.Warn("Dropping unprocessable message",
				zap.String("type", string(msg.Message.Type)),
				zap.String("tenant", msg.Message.TenantID),
				zap.Error(err))
		}

		// Only delete the message if processing was successful
		if err := w.queue.DeleteMessage(ctx, w.queueURL, msg.ReceiptHandle); err != nil {
			w.logger.Error("Failed to delete message", err, zap.String("tenant", msg.Message.TenantID))
		}
	}

	return nil
}

// ErrMalformedMessage marks a message no retry can process.
var ErrMalformedMessage = errors.New("malformed message")

func expectType(msg queue.Message, want queue.MessageType) error {
	if msg.Type != want {
		return fmt.Errorf("%w: unexpected type %q, want %q", ErrMalformedMessage, msg.Type, want)
	}
	return nil
}

func validateTenant(msg queue.Message) error {
	if err := domain.ValidateTenantID(msg.TenantID); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return nil
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrMalformedMessage) || errors.Is(err, domain.ErrInvalidTenantID)
}
