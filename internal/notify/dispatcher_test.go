package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockNotificationsRepo struct {
	mock.Mock
}

func (m *MockNotificationsRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationsRepo) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]*models.Notification, int, error) {
	args := m.Called(ctx, userID, unreadOnly, offset, limit)
	return args.Get(0).([]*models.Notification), args.Int(1), args.Error(2)
}

func (m *MockNotificationsRepo) MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockBroadcaster) Close() error {
	args := m.Called()
	return args.Error(0)
}

func closeDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_StoresThenBroadcasts(t *testing.T) {
	store := new(MockNotificationsRepo)
	broadcaster := new(MockBroadcaster)
	userID := uuid.New()

	var order []string
	store.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
		return n.UserID == userID && !n.CreatedAt.IsZero()
	})).Run(func(mock.Arguments) { order = append(order, "store") }).Return(nil).Once()
	broadcaster.On("Broadcast", mock.Anything, mock.AnythingOfType("*models.Notification")).
		Run(func(mock.Arguments) { order = append(order, "broadcast") }).Return(nil).Once()
	broadcaster.On("Close").Return(nil).Once()

	d := NewDispatcher(store, broadcaster, testLogger, 4)
	d.Notify(models.Notification{UserID: userID, Kind: models.NotifyNewReview, Title: "New 5-star review"})
	closeDispatcher(t, d)

	assert.Equal(t, []string{"store", "broadcast"}, order)
	store.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestDispatcher_StoreFailureSkipsBroadcast(t *testing.T) {
	store := new(MockNotificationsRepo)
	broadcaster := new(MockBroadcaster)
	store.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	broadcaster.On("Close").Return(nil)

	d := NewDispatcher(store, broadcaster, testLogger, 4)
	d.Notify(models.Notification{UserID: uuid.New(), Kind: models.NotifyNewComment})
	closeDispatcher(t, d)

	broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
}

func TestDispatcher_BroadcastFailureIsSwallowed(t *testing.T) {
	store := new(MockNotificationsRepo)
	broadcaster := new(MockBroadcaster)
	store.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Twice()
	broadcaster.On("Broadcast", mock.Anything, mock.Anything).Return(errors.New("broker down")).Twice()
	broadcaster.On("Close").Return(nil)

	d := NewDispatcher(store, broadcaster, testLogger, 4)
	d.Notify(models.Notification{UserID: uuid.New()})
	d.Notify(models.Notification{UserID: uuid.New()})
	closeDispatcher(t, d)

	store.AssertExpectations(t)
	broadcaster.AssertExpectations(t)
}

func TestDispatcher_NotifyAfterCloseIsDropped(t *testing.T) {
	store := new(MockNotificationsRepo)
	d := NewDispatcher(store, nil, testLogger, 1)
	closeDispatcher(t, d)

	assert.NotPanics(t, func() { d.Notify(models.Notification{UserID: uuid.New()}) })
	closeDispatcher(t, d)
	store.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
}

func TestDispatcher_FullQueueDoesNotBlock(t *testing.T) {
	store := new(MockNotificationsRepo)
	release := make(chan struct{})
	store.On("CreateNotification", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).Return(nil)

	d := NewDispatcher(store, nil, testLogger, 1)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(models.Notification{UserID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}
	close(release)
	closeDispatcher(t, d)
}
