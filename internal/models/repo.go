package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var Validate = validator.New()

const (
	UsersColName              = "users"
	SpotsColName              = "spots"
	GuideApplicationsColName  = "guide_applications"
	ReviewsColName            = "reviews"
	BlogsColName              = "blogs"
	CommentsColName           = "comments"
	EventsColName             = "events"
	EventRegistrationsColName = "event_registrations"
	ChatThreadsColName        = "chat_threads"
	ChatMessagesColName       = "chat_messages"
	NotificationsColName      = "notifications"
)

type SupabaseRepo struct {
	supabaseClient *supabase.Client
	url            string
	key            string
}

func SupabaseNewRepo(supabaseClient *supabase.Client, url, key string) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
		url:            url,
		key:            key,
	}
}

// Transactor runs a unit of work that spans several collections.
// Atomic reports whether a failed unit is rolled back by the store itself.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
	transactional bool
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string, transactional bool) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
		transactional: transactional,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

func (mdb *MongodbRepo) Atomic() bool {
	return mdb.transactional
}

// WithTransaction executes fn inside a multi-document transaction. The ctx handed
// to fn carries the session, so repo calls made with it join the transaction.
// Without transaction support fn runs directly against the store.
func (mdb *MongodbRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !mdb.transactional {
		return fn(ctx)
	}
	if mdb.mongodbClient == nil {
		return fmt.Errorf("mongodb client is not initialized")
	}

	session, err := mdb.mongodbClient.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// mongoErr translates driver errors into domain errors.
func mongoErr(err error, notFound, conflict *Error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) && notFound != nil {
		return notFound
	}
	if mongo.IsDuplicateKeyError(err) && conflict != nil {
		return conflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isDuplicate(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
