package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
	"github.com/kingrain94/tenant-expense-api/pkg/logger"
)

const (
	channelPrefix = "expenses:"
)

// RedisPubSub fans expense events out per tenant. Each tenant has its own
// channel, so a subscriber only ever sees the tenant it subscribed to.
type RedisPubSub struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisPubSub(client *redis.Client, logger *logger.Logger) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		logger: logger,
	}
}

func ChannelName(tenantID string) string {
	return channelPrefix + tenantID
}

// Publish publishes an expense event to the tenant's Redis channel
func (ps *RedisPubSub) Publish(ctx context.Context, event *dto.ExpenseEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal expense event: %w", err)
	}

	channel := ChannelName(event.TenantID)
	if err := ps.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}

	return nil
}

// Subscribe delivers the tenant's events to callback until ctx is done.
// The subscription is confirmed before Subscribe returns.
func (ps *RedisPubSub) Subscribe(ctx context.Context, tenantID string, callback func(*dto.ExpenseEvent)) error {
	channel := ChannelName(tenantID)

	sub := ps.client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}

	go func() {
		defer func() {
			ps.logger.Infof("Closing subscription for tenant channel: %s", channel)
			sub.Close()
		}()

		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event dto.ExpenseEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					ps.logger.Errorf("Failed to unmarshal expense event from channel %s: %v", channel, err)
					continue
				}
				if event.TenantID != tenantID {
					continue
				}
				callback(&event)

			case <-ctx.Done():
				return
			}
		}
	}()

	ps.logger.Infof("Subscribed to tenant channel: %s", channel)
	return nil
}
