package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	NotifyNewReview  = "review.created"
	NotifyNewComment = "comment.created"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    uuid.UUID          `bson:"user_id" json:"user_id"`
	Kind      string             `bson:"kind" json:"kind"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body,omitempty" json:"body,omitempty"`
	RefType   string             `bson:"ref_type,omitempty" json:"ref_type,omitempty"`
	RefID     string             `bson:"ref_id,omitempty" json:"ref_id,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type NotificationsRepo interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]*Notification, int, error)
	MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) error
}

func (mdb *MongodbRepo) CreateNotification(ctx context.Context, n *Notification) error {
	col, err := mdb.GetCollection(NotificationsColName)
	if err != nil {
		return err
	}
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]*Notification, int, error) {
	col, err := mdb.GetCollection(NotificationsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding notifications: %w", err)
	}
	defer cursor.Close(ctx)

	list := []*Notification{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, 0, fmt.Errorf("error decoding notifications: %w", err)
	}
	return list, int(total), nil
}

// MarkNotificationRead only matches the recipient's own notification.
func (mdb *MongodbRepo) MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) error {
	col, err := mdb.GetCollection(NotificationsColName)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return NotFound("notification not found")
	}
	return nil
}
