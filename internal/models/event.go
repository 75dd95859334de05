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
	EventPending  = "pending"
	EventApproved = "approved"
	EventRejected = "rejected"
)

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy   uuid.UUID          `bson:"created_by" json:"created_by"`
	Title       string             `bson:"title" json:"title" validate:"required,min=3,max=150"`
	Description string             `bson:"description" json:"description" validate:"max=5000"`
	Location    string             `bson:"location" json:"location" validate:"required"`
	StartsAt    time.Time          `bson:"starts_at" json:"starts_at" validate:"required"`
	EndsAt      time.Time          `bson:"ends_at" json:"ends_at" validate:"required,gtfield=StartsAt"`
	Capacity    int                `bson:"capacity,omitempty" json:"capacity,omitempty" validate:"min=0"`
	Price       float64            `bson:"price,omitempty" json:"price,omitempty" validate:"min=0"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Status      string             `bson:"status" json:"status"`

	SpotID *primitive.ObjectID `bson:"spot_id,omitempty" json:"spot_id,omitempty"`

	InterestedUsers []uuid.UUID `bson:"interested_users" json:"interested_users"`
	BookmarkedBy    []uuid.UUID `bson:"bookmarked_by" json:"bookmarked_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EventUpdate carries editable fields. Status is honoured for admins only and
// follows the same transitions as moderation; CreatedBy is not editable.
type EventUpdate struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=150"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=0"`
	Price       *float64   `json:"price" validate:"omitempty,min=0"`
	Images      []string   `json:"images"`
	Status      *string    `json:"status" validate:"omitempty,oneof=approved rejected"`
}

func (u EventUpdate) Fields() bson.M {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.StartsAt != nil {
		set["starts_at"] = *u.StartsAt
	}
	if u.EndsAt != nil {
		set["ends_at"] = *u.EndsAt
	}
	if u.Capacity != nil {
		set["capacity"] = *u.Capacity
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.Images != nil {
		set["images"] = u.Images
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	return set
}

type EventFilter struct {
	Status    string
	CreatedBy uuid.UUID
}

type EventsRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	GetEvent(ctx context.Context, id primitive.ObjectID) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, offset, limit int) ([]*Event, int, error)
	ListEventIDsByCreator(ctx context.Context, creator uuid.UUID) ([]primitive.ObjectID, error)
	UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Event, error)
	DeleteEvent(ctx context.Context, id primitive.ObjectID) error
	SetEventMembership(ctx context.Context, id primitive.ObjectID, field string, userID uuid.UUID, member bool) (*Event, error)
}

const (
	EventInterestedField = "interested_users"
	EventBookmarkedField = "bookmarked_by"
)

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.InterestedUsers == nil {
		event.InterestedUsers = []uuid.UUID{}
	}
	if event.BookmarkedBy == nil {
		event.BookmarkedBy = []uuid.UUID{}
	}
	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, mongoErr(err, nil, nil, "failed to insert event")
	}
	return event, nil
}

func (mdb *MongodbRepo) GetEvent(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	var event Event
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		return nil, mongoErr(err, ErrEventNotFound, nil, "failed to get event")
	}
	return &event, nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context, filter EventFilter, offset, limit int) ([]*Event, int, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, 0, err
	}
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.CreatedBy != uuid.Nil {
		query["created_by"] = filter.CreatedBy
	}

	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting events: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "starts_at", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("error finding events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, fmt.Errorf("error decoding events: %w", err)
	}
	return events, int(total), nil
}

func (mdb *MongodbRepo) ListEventIDsByCreator(ctx context.Context, creator uuid.UUID) ([]primitive.ObjectID, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := col.Find(ctx, bson.M{"created_by": creator}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding events by creator: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding event ids: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}
	fields["updated_at"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&event); err != nil {
		return nil, mongoErr(err, ErrEventNotFound, nil, "failed to update event")
	}
	return &event, nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// SetEventMembership adds or removes userID from one of the event's user sets.
func (mdb *MongodbRepo) SetEventMembership(ctx context.Context, id primitive.ObjectID, field string, userID uuid.UUID, member bool) (*Event, error) {
	if field != EventInterestedField && field != EventBookmarkedField {
		return nil, Invalid(fmt.Sprintf("unknown membership field %q", field))
	}
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, err
	}

	op := "$pull"
	if member {
		op = "$addToSet"
	}
	update := bson.M{op: bson.M{field: userID}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event Event
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&event); err != nil {
		return nil, mongoErr(err, ErrEventNotFound, nil, "failed to update event membership")
	}
	return &event, nil
}
