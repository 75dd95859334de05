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

type ParentType string

const (
	ParentBlog  ParentType = "blog"
	ParentEvent ParentType = "event"
)

func (t ParentType) Valid() bool {
	return t == ParentBlog || t == ParentEvent
}

// Comment is a child of a blog or an event, stored in its own collection.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParentType ParentType         `bson:"parent_type" json:"parent_type"`
	ParentID   primitive.ObjectID `bson:"parent_id" json:"parent_id"`
	AuthorID   uuid.UUID          `bson:"author_id" json:"author_id"`
	Content    string             `bson:"content" json:"content" validate:"required,min=1,max=2000"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

type CommentsRepo interface {
	CreateComment(ctx context.Context, comment *Comment) (*Comment, error)
	GetComment(ctx context.Context, id primitive.ObjectID) (*Comment, error)
	ListComments(ctx context.Context, parentType ParentType, parentID primitive.ObjectID, offset, limit int) ([]*Comment, int, error)
	UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteCommentsByParent(ctx context.Context, parentType ParentType, parentID primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateComment(ctx context.Context, comment *Comment) (*Comment, error) {
	col, err := mdb.GetCollection(CommentsColName)
	if err != nil {
		return nil, err
	}
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return comment, nil
}

func (mdb *MongodbRepo) GetComment(ctx context.Context, id primitive.ObjectID) (*Comment, error) {
	col, err := mdb.GetCollection(CommentsColName)
	if err != nil {
		return nil, err
	}
	var comment Comment
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, mongoErr(err, ErrCommentNotFound, nil, "failed to get comment")
	}
	return &comment, nil
}

func (mdb *MongodbRepo) ListComments(ctx context.Context, parentType ParentType, parentID primitive.ObjectID, offset, limit int) ([]*Comment, int, error) {
	col, err := mdb.GetCollection(CommentsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{"parent_type": parentType, "parent_id": parentID}
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting comments: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []*Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, fmt.Errorf("error decoding comments: %w", err)
	}
	return comments, int(total), nil
}

func (mdb *MongodbRepo) UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*Comment, error) {
	col, err := mdb.GetCollection(CommentsColName)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment Comment
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment); err != nil {
		return nil, mongoErr(err, ErrCommentNotFound, nil, "failed to update comment")
	}
	return &comment, nil
}

func (mdb *MongodbRepo) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(CommentsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func (mdb *MongodbRepo) DeleteCommentsByParent(ctx context.Context, parentType ParentType, parentID primitive.ObjectID) error {
	col, err := mdb.GetCollection(CommentsColName)
	if err != nil {
		return err
	}
	if _, err := col.DeleteMany(ctx, bson.M{"parent_type": parentType, "parent_id": parentID}); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	return nil
}
