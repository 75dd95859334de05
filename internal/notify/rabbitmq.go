package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joshua-takyi/tourly/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "notifications"

// RabbitBroadcaster publishes notifications to a fanout exchange. The kind is
// set as the routing key so consumers can tell events apart.
type RabbitBroadcaster struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewRabbitBroadcaster(conn *amqp.Connection, exchange string) (*RabbitBroadcaster, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &RabbitBroadcaster{conn: conn, ch: ch, exchange: exchange}, nil
}

func (b *RabbitBroadcaster) Broadcast(ctx context.Context, n *models.Notification) error {
	body, err := sonic.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	publishing := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ch.PublishWithContext(ctx, b.exchange, n.Kind, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish notification to rabbitmq: %w", err)
	}
	return nil
}

func (b *RabbitBroadcaster) Close() error {
	if err := b.ch.Close(); err != nil {
		return err
	}
	return b.conn.Close()
}
