package models

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collectionIndexes holds the indexes each collection needs. The unique ones
// back the one-review-per-author, one-registration-per-user, one-thread-per-pair
// and one-pending-application rules.
var collectionIndexes = map[string][]mongo.IndexModel{
	UsersColName: {
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_idx"),
		},
	},
	SpotsColName: {
		{
			Keys:    bson.D{{Key: "region", Value: 1}},
			Options: options.Index().SetName("region_idx"),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetName("name_idx"),
		},
	},
	GuideApplicationsColName: {
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": ApplicationPending}).
				SetName("user_pending_unique"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "avg_rating", Value: -1}},
			Options: options.Index().SetName("status_rating_idx"),
		},
	},
	ReviewsColName: {
		{
			Keys: bson.D{
				{Key: "subject_type", Value: 1},
				{Key: "subject_id", Value: 1},
				{Key: "author_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("subject_author_unique"),
		},
		{
			Keys: bson.D{
				{Key: "subject_type", Value: 1},
				{Key: "subject_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("subject_created_idx"),
		},
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("author_id_idx"),
		},
	},
	BlogsColName: {
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("author_created_idx"),
		},
	},
	CommentsColName: {
		{
			Keys: bson.D{
				{Key: "parent_type", Value: 1},
				{Key: "parent_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("parent_created_idx"),
		},
	},
	EventsColName: {
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "starts_at", Value: 1}},
			Options: options.Index().SetName("status_starts_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_by", Value: 1}},
			Options: options.Index().SetName("created_by_idx"),
		},
	},
	EventRegistrationsColName: {
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("event_user_unique"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
	},
	ChatThreadsColName: {
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("event_user_unique"),
		},
		{
			Keys:    bson.D{{Key: "guide_id", Value: 1}, {Key: "last_message_at", Value: -1}},
			Options: options.Index().SetName("guide_last_message_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "last_message_at", Value: -1}},
			Options: options.Index().SetName("user_last_message_idx"),
		},
	},
	ChatMessagesColName: {
		{
			Keys:    bson.D{{Key: "thread_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("thread_created_idx"),
		},
	},
	NotificationsColName: {
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_created_idx"),
		},
	},
}

// EnsureIndexes creates every collection's indexes. It is safe to call on
// each start; existing indexes with the same keys and options are left alone.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	for colName, indexes := range collectionIndexes {
		col, err := mdb.GetCollection(colName)
		if err != nil {
			return fmt.Errorf("error getting collection: %w", err)
		}
		if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("error creating indexes on %s: %w", colName, err)
		}
	}
	return nil
}
