package services

import (
	"context"

	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	notifications models.NotificationsRepo
}

func NewNotificationService(notifications models.NotificationsRepo) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (ns *NotificationService) ListNotifications(ctx context.Context, actor models.Actor, unreadOnly bool, offset, limit int) ([]*models.Notification, int, error) {
	if actor.IsZero() {
		return nil, 0, models.ErrUnauthorized
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, models.Invalid("invalid offset or limit")
	}
	return ns.notifications.ListNotifications(ctx, actor.ID, unreadOnly, offset, limit)
}

func (ns *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	if actor.IsZero() {
		return models.ErrUnauthorized
	}
	return ns.notifications.MarkNotificationRead(ctx, id, actor.ID)
}
