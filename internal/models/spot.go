package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Coordinates struct {
	Latitude  float64 `bson:"lat" json:"lat" validate:"min=-90,max=90"`
	Longitude float64 `bson:"lng" json:"lng" validate:"min=-180,max=180"`
}

type TouristSpot struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name" validate:"required,min=2,max=120"`
	Description string             `bson:"description" json:"description" validate:"max=5000"`
	Location    string             `bson:"location" json:"location" validate:"required"`
	Region      string             `bson:"region" json:"region" validate:"required"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Coordinates *Coordinates       `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	EntryFee    float64            `bson:"entry_fee,omitempty" json:"entry_fee,omitempty" validate:"min=0"`
	CreatedBy   uuid.UUID          `bson:"created_by" json:"created_by"`

	// derived, never client settable
	AvgRating   float64 `bson:"avg_rating" json:"avg_rating"`
	ReviewCount int     `bson:"review_count" json:"review_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type SpotUpdate struct {
	Name        *string      `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string      `json:"description" validate:"omitempty,max=5000"`
	Location    *string      `json:"location"`
	Region      *string      `json:"region"`
	Category    *string      `json:"category"`
	Coordinates *Coordinates `json:"coordinates"`
	Images      []string     `json:"images"`
	Tags        []string     `json:"tags"`
	EntryFee    *float64     `json:"entry_fee" validate:"omitempty,min=0"`
}

// Fields returns the $set document for the non-nil fields.
func (u SpotUpdate) Fields() bson.M {
	set := bson.M{}
	if u.Name != nil {
		set["name"] = helpers.StringTrim(*u.Name)
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Region != nil {
		set["region"] = *u.Region
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Coordinates != nil {
		set["coordinates"] = u.Coordinates
	}
	if u.Images != nil {
		set["images"] = u.Images
	}
	if u.Tags != nil {
		set["tags"] = helpers.RemoveDuplicates(u.Tags)
	}
	if u.EntryFee != nil {
		set["entry_fee"] = *u.EntryFee
	}
	return set
}

type SpotsRepo interface {
	CreateSpot(ctx context.Context, spot *TouristSpot) (*TouristSpot, error)
	GetSpot(ctx context.Context, id primitive.ObjectID) (*TouristSpot, error)
	ListSpots(ctx context.Context, region string, offset, limit int) ([]*TouristSpot, int, error)
	UpdateSpot(ctx context.Context, id primitive.ObjectID, fields bson.M) (*TouristSpot, error)
	DeleteSpot(ctx context.Context, id primitive.ObjectID) error
}

func (mdb *MongodbRepo) CreateSpot(ctx context.Context, spot *TouristSpot) (*TouristSpot, error) {
	col, err := mdb.GetCollection(SpotsColName)
	if err != nil {
		return nil, err
	}
	if spot.ID.IsZero() {
		spot.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, spot); err != nil {
		return nil, mongoErr(err, nil, Conflict("tourist spot already exists"), "failed to insert tourist spot")
	}
	return spot, nil
}

func (mdb *MongodbRepo) GetSpot(ctx context.Context, id primitive.ObjectID) (*TouristSpot, error) {
	col, err := mdb.GetCollection(SpotsColName)
	if err != nil {
		return nil, err
	}
	var spot TouristSpot
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&spot); err != nil {
		return nil, mongoErr(err, ErrSpotNotFound, nil, "failed to get tourist spot")
	}
	return &spot, nil
}

func (mdb *MongodbRepo) ListSpots(ctx context.Context, region string, offset, limit int) ([]*TouristSpot, int, error) {
	col, err := mdb.GetCollection(SpotsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{}
	if region != "" {
		filter["region"] = region
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting tourist spots: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "avg_rating", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding tourist spots: %w", err)
	}
	defer cursor.Close(ctx)

	spots := []*TouristSpot{}
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, 0, fmt.Errorf("error decoding tourist spots: %w", err)
	}
	return spots, int(total), nil
}

func (mdb *MongodbRepo) UpdateSpot(ctx context.Context, id primitive.ObjectID, fields bson.M) (*TouristSpot, error) {
	col, err := mdb.GetCollection(SpotsColName)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var spot TouristSpot
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&spot)
	if err != nil {
		return nil, mongoErr(err, ErrSpotNotFound, nil, "failed to update tourist spot")
	}
	return &spot, nil
}

func (mdb *MongodbRepo) DeleteSpot(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(SpotsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete tourist spot: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrSpotNotFound
	}
	return nil
}
