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

type Blog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID  uuid.UUID          `bson:"author_id" json:"author_id"`
	Title     string             `bson:"title" json:"title" validate:"required,min=3,max=200"`
	Content   string             `bson:"content" json:"content" validate:"required,min=10"`
	Tags      []string           `bson:"tags,omitempty" json:"tags,omitempty" validate:"max=10,dive,max=30"`
	Images    []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type BlogUpdate struct {
	Title   *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Content *string  `json:"content" validate:"omitempty,min=10"`
	Tags    []string `json:"tags" validate:"omitempty,max=10,dive,max=30"`
	Images  []string `json:"images"`
}

func (u BlogUpdate) Fields() bson.M {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Content != nil {
		set["content"] = *u.Content
	}
	if u.Tags != nil {
		set["tags"] = u.Tags
	}
	if u.Images != nil {
		set["images"] = u.Images
	}
	return set
}

type BlogsRepo interface {
	CreateBlog(ctx context.Context, blog *Blog) (*Blog, error)
	GetBlog(ctx context.Context, id primitive.ObjectID) (*Blog, error)
	ListBlogs(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*Blog, int, error)
	UpdateBlog(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Blog, error)
	DeleteBlog(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateBlog(ctx context.Context, blog *Blog) (*Blog, error) {
	col, err := mdb.GetCollection(BlogsColName)
	if err != nil {
		return nil, err
	}
	if blog.ID.IsZero() {
		blog.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to insert blog: %w", err)
	}
	return blog, nil
}

func (mdb *MongodbRepo) GetBlog(ctx context.Context, id primitive.ObjectID) (*Blog, error) {
	col, err := mdb.GetCollection(BlogsColName)
	if err != nil {
		return nil, err
	}
	var blog Blog
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&blog); err != nil {
		return nil, mongoErr(err, ErrBlogNotFound, nil, "failed to get blog")
	}
	return &blog, nil
}

// ListBlogs lists newest first; a nil authorID lists every author.
func (mdb *MongodbRepo) ListBlogs(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*Blog, int, error) {
	col, err := mdb.GetCollection(BlogsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{}
	if authorID != uuid.Nil {
		filter["author_id"] = authorID
	}
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting blogs: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding blogs: %w", err)
	}
	defer cursor.Close(ctx)

	blogs := []*Blog{}
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, 0, fmt.Errorf("error decoding blogs: %w", err)
	}
	return blogs, int(total), nil
}

func (mdb *MongodbRepo) UpdateBlog(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Blog, error) {
	col, err := mdb.GetCollection(BlogsColName)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var blog Blog
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&blog); err != nil {
		return nil, mongoErr(err, ErrBlogNotFound, nil, "failed to update blog")
	}
	return &blog, nil
}

func (mdb *MongodbRepo) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(BlogsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrBlogNotFound
	}
	return nil
}
