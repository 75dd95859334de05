package notify

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "notifications"

// RedisBroadcaster publishes notifications on a pub/sub channel.
type RedisBroadcaster struct {
	client  *redis.Client
	channel string
}

func NewRedisBroadcaster(client *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroadcaster{client: client, channel: channel}
}

func (b *RedisBroadcaster) Broadcast(ctx context.Context, n *models.Notification) error {
	data, err := sonic.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification to redis: %w", err)
	}
	return nil
}

func (b *RedisBroadcaster) Close() error {
	return b.client.Close()
}
