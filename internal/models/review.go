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

type SubjectType string

const (
	SubjectSpot  SubjectType = "spot"
	SubjectGuide SubjectType = "guide"
)

func (t SubjectType) Valid() bool {
	return t == SubjectSpot || t == SubjectGuide
}

// SubjectRef identifies a reviewable entity.
type SubjectRef struct {
	Type SubjectType        `bson:"subject_type" json:"subject_type"`
	ID   primitive.ObjectID `bson:"subject_id" json:"subject_id"`
}

func (s SubjectRef) String() string {
	return fmt.Sprintf("%s:%s", s.Type, s.ID.Hex())
}

type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubjectType SubjectType        `bson:"subject_type" json:"subject_type"`
	SubjectID   primitive.ObjectID `bson:"subject_id" json:"subject_id"`
	AuthorID    uuid.UUID          `bson:"author_id" json:"author_id"`
	Rating      int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment     string             `bson:"comment" json:"comment" validate:"max=2000"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

func (r *Review) Subject() SubjectRef {
	return SubjectRef{Type: r.SubjectType, ID: r.SubjectID}
}

// RatingAggregate is the derived rating summary stored on a subject.
type RatingAggregate struct {
	AvgRating   float64 `bson:"avg_rating" json:"avg_rating"`
	ReviewCount int     `bson:"review_count" json:"review_count"`
}

type ReviewsRepo interface {
	CreateReview(ctx context.Context, review *Review) (*Review, error)
	GetReview(ctx context.Context, id primitive.ObjectID) (*Review, error)
	FindReviewByAuthor(ctx context.Context, subject SubjectRef, authorID uuid.UUID) (*Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, rating int, comment string) (*Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	ListReviewsBySubject(ctx context.Context, subject SubjectRef, offset, limit int) ([]*Review, int, error)
	ListReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Review, error)
	RatingsForSubject(ctx context.Context, subject SubjectRef) ([]int, error)
}

// AggregateRepo writes derived rating fields onto the subject document.
type AggregateRepo interface {
	SetSubjectAggregate(ctx context.Context, subject SubjectRef, agg RatingAggregate) error
}

func subjectFilter(subject SubjectRef) bson.M {
	return bson.M{"subject_type": subject.Type, "subject_id": subject.ID}
}

func (mdb *MongodbRepo) CreateReview(ctx context.Context, review *Review) (*Review, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, review); err != nil {
		return nil, mongoErr(err, nil, ErrAlreadyReviewed, "failed to insert review into database")
	}
	return review, nil
}

func (mdb *MongodbRepo) GetReview(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}
	var review Review
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, mongoErr(err, ErrReviewNotFound, nil, "failed to get review")
	}
	return &review, nil
}

// FindReviewByAuthor returns (nil, nil) when the author has not reviewed the subject.
func (mdb *MongodbRepo) FindReviewByAuthor(ctx context.Context, subject SubjectRef, authorID uuid.UUID) (*Review, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}
	filter := subjectFilter(subject)
	filter["author_id"] = authorID

	var review Review
	err = col.FindOne(ctx, filter).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up existing review: %w", err)
	}
	return &review, nil
}

func (mdb *MongodbRepo) UpdateReview(ctx context.Context, id primitive.ObjectID, rating int, comment string) (*Review, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}
	update := bson.M{"$set": bson.M{
		"rating":     rating,
		"comment":    comment,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var review Review
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&review); err != nil {
		return nil, mongoErr(err, ErrReviewNotFound, nil, "failed to update review")
	}
	return &review, nil
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (mdb *MongodbRepo) ListReviewsBySubject(ctx context.Context, subject SubjectRef, offset, limit int) ([]*Review, int, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := subjectFilter(subject)
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting reviews: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, fmt.Errorf("error decoding reviews: %w", err)
	}
	return reviews, int(total), nil
}

func (mdb *MongodbRepo) ListReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Review, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"author_id": authorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("error decoding reviews: %w", err)
	}
	return reviews, nil
}

func (mdb *MongodbRepo) RatingsForSubject(ctx context.Context, subject SubjectRef) ([]int, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(bson.M{"rating": 1})
	cursor, err := col.Find(ctx, subjectFilter(subject), opts)
	if err != nil {
		return nil, fmt.Errorf("error reading ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var ratings []int
	for cursor.Next(ctx) {
		var row struct {
			Rating int `bson:"rating"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("error decoding rating: %w", err)
		}
		ratings = append(ratings, row.Rating)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ratings, nil
}

// SetSubjectAggregate is a no-op when the subject no longer exists.
func (mdb *MongodbRepo) SetSubjectAggregate(ctx context.Context, subject SubjectRef, agg RatingAggregate) error {
	var colName string
	switch subject.Type {
	case SubjectSpot:
		colName = SpotsColName
	case SubjectGuide:
		colName = GuideApplicationsColName
	default:
		return Invalid(fmt.Sprintf("unknown subject type %q", subject.Type))
	}

	col, err := mdb.GetCollection(colName)
	if err != nil {
		return err
	}
	_, err = col.UpdateOne(ctx, bson.M{"_id": subject.ID}, bson.M{"$set": bson.M{
		"avg_rating":   agg.AvgRating,
		"review_count": agg.ReviewCount,
	}})
	if err != nil {
		return fmt.Errorf("failed to write rating aggregate for %s: %w", subject, err)
	}
	return nil
}
