package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatThread links one event registrant with the event's creator.
// (event_id, user_id) is unique.
type ChatThread struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID       primitive.ObjectID `bson:"event_id" json:"event_id"`
	GuideID       uuid.UUID          `bson:"guide_id" json:"guide_id"`
	UserID        uuid.UUID          `bson:"user_id" json:"user_id"`
	LastMessageAt time.Time          `bson:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ThreadID  primitive.ObjectID `bson:"thread_id" json:"thread_id"`
	SenderID  uuid.UUID          `bson:"sender_id" json:"sender_id"`
	Body      string             `bson:"body" json:"body" validate:"required,max=4000"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type ThreadsRepo interface {
	EnsureThread(ctx context.Context, thread *ChatThread) (*ChatThread, error)
	EnsureThreads(ctx context.Context, threads []*ChatThread) (int, error)
	GetThread(ctx context.Context, id primitive.ObjectID) (*ChatThread, error)
	ListThreadsByGuide(ctx context.Context, guideID uuid.UUID) ([]*ChatThread, error)
	ListThreadsByUser(ctx context.Context, userID uuid.UUID) ([]*ChatThread, error)
	TouchThread(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type MessagesRepo interface {
	CreateMessage(ctx context.Context, msg *ChatMessage) (*ChatMessage, error)
	ListMessages(ctx context.Context, threadID primitive.ObjectID, offset, limit int) ([]*ChatMessage, error)
}

func threadUpsert(thread *ChatThread) (bson.M, bson.M) {
	filter := bson.M{"event_id": thread.EventID, "user_id": thread.UserID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":             primitive.NewObjectID(),
		"event_id":        thread.EventID,
		"guide_id":        thread.GuideID,
		"user_id":         thread.UserID,
		"last_message_at": thread.LastMessageAt,
		"created_at":      thread.CreatedAt,
	}}
	return filter, update
}

// EnsureThread is find-or-create keyed on (event_id, user_id).
func (mdb *MongodbRepo) EnsureThread(ctx context.Context, thread *ChatThread) (*ChatThread, error) {
	col, err := mdb.GetCollection(ChatThreadsColName)
	if err != nil {
		return nil, err
	}
	filter, update := threadUpsert(thread)
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result ChatThread
	err = col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result)
	err = settleUpsertRace(err, func() error {
		return col.FindOne(ctx, filter).Decode(&result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// settleUpsertRace turns a duplicate-key upsert error into a read of the
// document the concurrent winner inserted.
func settleUpsertRace(err error, find func() error) error {
	if err == nil {
		return nil
	}
	if !isDuplicate(err) {
		return fmt.Errorf("error upserting chat thread: %w", err)
	}
	if err := find(); err != nil {
		return fmt.Errorf("error reading chat thread after upsert race: %w", err)
	}
	return nil
}

// EnsureThreads upserts threads in one unordered batch and returns how many
// were created. Threads that already exist are left untouched.
func (mdb *MongodbRepo) EnsureThreads(ctx context.Context, threads []*ChatThread) (int, error) {
	if len(threads) == 0 {
		return 0, nil
	}
	col, err := mdb.GetCollection(ChatThreadsColName)
	if err != nil {
		return 0, err
	}

	writes := make([]mongo.WriteModel, 0, len(threads))
	for _, t := range threads {
		filter, update := threadUpsert(t)
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(update).
			SetUpsert(true))
	}

	res, err := col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil && !onlyDuplicateKeyErrors(err) {
		return 0, fmt.Errorf("error bootstrapping chat threads: %w", err)
	}
	if res == nil {
		return 0, nil
	}
	return int(res.UpsertedCount), nil
}

func onlyDuplicateKeyErrors(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return false
	}
	if bwe.WriteConcernError != nil {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}

func (mdb *MongodbRepo) GetThread(ctx context.Context, id primitive.ObjectID) (*ChatThread, error) {
	col, err := mdb.GetCollection(ChatThreadsColName)
	if err != nil {
		return nil, err
	}
	var thread ChatThread
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&thread); err != nil {
		return nil, mongoErr(err, ErrThreadNotFound, nil, "failed to get chat thread")
	}
	return &thread, nil
}

func (mdb *MongodbRepo) listThreads(ctx context.Context, filter bson.M) ([]*ChatThread, error) {
	col, err := mdb.GetCollection(ChatThreadsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding chat threads: %w", err)
	}
	defer cursor.Close(ctx)

	threads := []*ChatThread{}
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, fmt.Errorf("error decoding chat threads: %w", err)
	}
	return threads, nil
}

func (mdb *MongodbRepo) ListThreadsByGuide(ctx context.Context, guideID uuid.UUID) ([]*ChatThread, error) {
	return mdb.listThreads(ctx, bson.M{"guide_id": guideID})
}

func (mdb *MongodbRepo) ListThreadsByUser(ctx context.Context, userID uuid.UUID) ([]*ChatThread, error) {
	return mdb.listThreads(ctx, bson.M{"user_id": userID})
}

func (mdb *MongodbRepo) TouchThread(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	col, err := mdb.GetCollection(ChatThreadsColName)
	if err != nil {
		return err
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$max": bson.M{"last_message_at": at}})
	if err != nil {
		return fmt.Errorf("failed to update chat thread: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) CreateMessage(ctx context.Context, msg *ChatMessage) (*ChatMessage, error) {
	col, err := mdb.GetCollection(ChatMessagesColName)
	if err != nil {
		return nil, err
	}
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to insert chat message: %w", err)
	}
	return msg, nil
}

func (mdb *MongodbRepo) ListMessages(ctx context.Context, threadID primitive.ObjectID, offset, limit int) ([]*ChatMessage, error) {
	col, err := mdb.GetCollection(ChatMessagesColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, bson.M{"thread_id": threadID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding chat messages: %w", err)
	}
	defer cursor.Close(ctx)

	msgs := []*ChatMessage{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("error decoding chat messages: %w", err)
	}
	return msgs, nil
}
