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

type EventRegistration struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID      primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID       uuid.UUID          `bson:"user_id" json:"user_id"`
	FullName     string             `bson:"full_name" json:"full_name" validate:"required,min=2,max=100"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,e164"`
	Participants int                `bson:"participants" json:"participants" validate:"min=1,max=50"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty" validate:"max=1000"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
}

type RegistrationsRepo interface {
	CreateRegistration(ctx context.Context, reg *EventRegistration) (*EventRegistration, error)
	FindRegistration(ctx context.Context, eventID primitive.ObjectID, userID uuid.UUID) (*EventRegistration, error)
	ListRegistrationsByEvents(ctx context.Context, eventIDs []primitive.ObjectID) ([]*EventRegistration, error)
	ListRegistrationsByUser(ctx context.Context, userID uuid.UUID) ([]*EventRegistration, error)
	CountParticipants(ctx context.Context, eventID primitive.ObjectID) (int, error)
}

func (mdb *MongodbRepo) CreateRegistration(ctx context.Context, reg *EventRegistration) (*EventRegistration, error) {
	col, err := mdb.GetCollection(EventRegistrationsColName)
	if err != nil {
		return nil, err
	}
	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, reg); err != nil {
		return nil, mongoErr(err, nil, ErrAlreadyRegistered, "failed to insert event registration")
	}
	return reg, nil
}

// FindRegistration returns (nil, nil) when the user is not registered.
func (mdb *MongodbRepo) FindRegistration(ctx context.Context, eventID primitive.ObjectID, userID uuid.UUID) (*EventRegistration, error) {
	col, err := mdb.GetCollection(EventRegistrationsColName)
	if err != nil {
		return nil, err
	}
	var reg EventRegistration
	err = col.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up registration: %w", err)
	}
	return &reg, nil
}

func (mdb *MongodbRepo) ListRegistrationsByEvents(ctx context.Context, eventIDs []primitive.ObjectID) ([]*EventRegistration, error) {
	if len(eventIDs) == 0 {
		return []*EventRegistration{}, nil
	}
	col, err := mdb.GetCollection(EventRegistrationsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{"event_id": bson.M{"$in": eventIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding registrations: %w", err)
	}
	defer cursor.Close(ctx)

	regs := []*EventRegistration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("error decoding registrations: %w", err)
	}
	return regs, nil
}

func (mdb *MongodbRepo) ListRegistrationsByUser(ctx context.Context, userID uuid.UUID) ([]*EventRegistration, error) {
	col, err := mdb.GetCollection(EventRegistrationsColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding registrations: %w", err)
	}
	defer cursor.Close(ctx)

	regs := []*EventRegistration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("error decoding registrations: %w", err)
	}
	return regs, nil
}

// CountParticipants sums the participants of every registration for the event.
func (mdb *MongodbRepo) CountParticipants(ctx context.Context, eventID primitive.ObjectID) (int, error) {
	col, err := mdb.GetCollection(EventRegistrationsColName)
	if err != nil {
		return 0, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_id": eventID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$participants"},
		}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("error aggregating participants: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("error decoding participants: %w", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}
