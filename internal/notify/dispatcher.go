// Package notify delivers user notifications off the request path.
//
// A Dispatcher buffers notifications in memory and a single worker persists
// each one to the notification store, then hands it to an optional
// Broadcaster (Redis pub/sub or a RabbitMQ exchange) for live fan-out.
// Every failure is logged and dropped; callers are never blocked or failed.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joshua-takyi/tourly/internal/models"
)

const (
	DefaultQueueSize   = 256
	defaultSendTimeout = 5 * time.Second
)

// Broadcaster pushes a stored notification to live subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, n *models.Notification) error
	Close() error
}

type Dispatcher struct {
	store       models.NotificationsRepo
	broadcaster Broadcaster
	logger      *slog.Logger

	queue  chan models.Notification
	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts the worker. broadcaster may be nil.
func NewDispatcher(store models.NotificationsRepo, broadcaster Broadcaster, logger *slog.Logger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		store:       store,
		broadcaster: broadcaster,
		logger:      logger,
		queue:       make(chan models.Notification, queueSize),
		done:        make(chan struct{}),
	}
	go d.run()
	return d
}

// Notify enqueues n. A full queue drops n with a warning.
func (d *Dispatcher) Notify(n models.Notification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dropped after shutdown", "kind", n.Kind, "user_id", n.UserID)
		return
	}
	select {
	case d.queue <- n:
	default:
		d.logger.Warn("notification queue full, dropping", "kind", n.Kind, "user_id", n.UserID)
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSendTimeout)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := d.store.CreateNotification(ctx, &n); err != nil {
		d.logger.Error("failed to store notification", "kind", n.Kind, "user_id", n.UserID, "error", err)
		return
	}
	if d.broadcaster == nil {
		return
	}
	if err := d.broadcaster.Broadcast(ctx, &n); err != nil {
		d.logger.Error("failed to broadcast notification", "kind", n.Kind, "user_id", n.UserID, "error", err)
	}
}

// Close stops accepting notifications and waits for the queue to drain or
// ctx to expire, then closes the broadcaster.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if d.broadcaster != nil {
		return d.broadcaster.Close()
	}
	return nil
}
