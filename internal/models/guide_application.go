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

const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// GuideApplication doubles as the guide profile once approved; reviews of a
// guide reference the approved application.
type GuideApplication struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          uuid.UUID          `bson:"user_id" json:"user_id"`
	FullName        string             `bson:"full_name" json:"full_name" validate:"required,min=2,max=100"`
	Bio             string             `bson:"bio" json:"bio" validate:"required,min=20,max=2000"`
	Phone           string             `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,e164"`
	Languages       []string           `bson:"languages" json:"languages" validate:"required,min=1,dive,required"`
	Regions         []string           `bson:"regions,omitempty" json:"regions,omitempty"`
	ExperienceYears int                `bson:"experience_years" json:"experience_years" validate:"min=0,max=80"`
	Certifications  []string           `bson:"certifications,omitempty" json:"certifications,omitempty"`

	Status      string     `bson:"status" json:"status"`
	ReviewedBy  *uuid.UUID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewNotes string     `bson:"review_notes,omitempty" json:"review_notes,omitempty"`

	AvgRating   float64 `bson:"avg_rating" json:"avg_rating"`
	ReviewCount int     `bson:"review_count" json:"review_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type GuideApplicationRepo interface {
	CreateApplication(ctx context.Context, app *GuideApplication) (*GuideApplication, error)
	GetApplication(ctx context.Context, id primitive.ObjectID) (*GuideApplication, error)
	FindPendingApplication(ctx context.Context, userID uuid.UUID) (*GuideApplication, error)
	ListApplications(ctx context.Context, status string, offset, limit int) ([]*GuideApplication, int, error)
	ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]*GuideApplication, error)
	MarkApplicationReviewed(ctx context.Context, id primitive.ObjectID, status string, reviewer uuid.UUID, notes string, at time.Time) error
	RevertApplicationReview(ctx context.Context, id primitive.ObjectID, status string) error
}

func (mdb *MongodbRepo) CreateApplication(ctx context.Context, app *GuideApplication) (*GuideApplication, error) {
	col, err := mdb.GetCollection(GuideApplicationsColName)
	if err != nil {
		return nil, err
	}
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, app); err != nil {
		return nil, mongoErr(err, nil, ErrPendingApplication, "failed to insert guide application")
	}
	return app, nil
}

func (mdb *MongodbRepo) GetApplication(ctx context.Context, id primitive.ObjectID) (*GuideApplication, error) {
	col, err := mdb.GetCollection(GuideApplicationsColName)
	if err != nil {
		return nil, err
	}
	var app GuideApplication
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&app); err != nil {
		return nil, mongoErr(err, ErrApplicationNotFound, nil, "failed to get guide application")
	}
	return &app, nil
}

// FindPendingApplication returns (nil, nil) when the user has nothing pending.
func (mdb *MongodbRepo) FindPendingApplication(ctx context.Context, userID uuid.UUID) (*GuideApplication, error) {
	col, err := mdb.GetCollection(GuideApplicationsColName)
	if err != nil {
		return nil, err
	}
	var app GuideApplication
	err = col.FindOne(ctx, bson.M{"user_id": userID, "status": ApplicationPending}).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up pending application: %w", err)
	}
	return &app, nil
}

func (mdb *MongodbRepo) ListApplications(ctx context.Context, status string, offset, limit int) ([]*GuideApplication, int, error) {
	col, err := mdb.GetCollection(GuideApplicationsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting guide applications: %w", err)
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	if status == ApplicationApproved {
		sort = bson.D{{Key: "avg_rating", Value: -1}, {Key: "review_count", Value: -1}}
	}
	opts := options.Find().SetSort(sort).SetSkip(int64(offset)).SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding guide applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := []*GuideApplication{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, 0, fmt.Errorf("error decoding guide applications: %w", err)
	}
	return apps, int(total), nil
}

func (mdb *MongodbRepo) ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]*GuideApplication, error) {
	col, err := mdb.GetCollection(GuideApplicationsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding guide applications: %w", err)
	}
	defer cursor.Close(ctx)

	apps := []*GuideApplication{}
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("error decoding guide applications: %w", err)
	}
	return apps, nil
}

// MarkApplicationReviewed moves a pending application to status. The write only
// matches a pending document, so a concurrent reviewer gets InvalidState.
func (mdb *MongodbRepo) MarkApplicationReviewed(ctx context.Context, id primitive.ObjectID, status string, reviewer uuid.UUID, notes string, at time.Time) error {
	col, err := mdb.GetCollection(GuideApplicationsColName)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "status": ApplicationPending},
		bson.M{"$set": bson.M{
			"status":       status,
			"reviewed_by":  reviewer,
			"reviewed_at":  at,
			"review_notes": notes,
			"updated_at":   at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update guide application: %w", err)
	}
	if res.MatchedCount == 0 {
		return InvalidState("guide application has already been reviewed")
	}
	return nil
}

// RevertApplicationReview puts an application reviewed as status back to pending.
func (mdb *MongodbRepo) RevertApplicationReview(ctx context.Context, id primitive.ObjectID, status string) error {
	col, err := mdb.GetCollection(GuideApplicationsColName)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx,
		bson.M{"_id": id, "status": status},
		bson.M{
			"$set":   bson.M{"status": ApplicationPending, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"reviewed_by": "", "reviewed_at": "", "review_notes": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to revert guide application: %w", err)
	}
	if res.MatchedCount == 0 {
		return InvalidState("guide application is not in the expected state")
	}
	return nil
}
