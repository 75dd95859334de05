package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuthRepo is the identity provider: credentials never touch Mongo.
type AuthRepo interface {
	SignUp(ctx context.Context, email, password string, data map[string]interface{}) (uuid.UUID, error)
	SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, user *User) error
	GetProfile(ctx context.Context, id uuid.UUID) (*User, error)
	GetOrCreateProfile(ctx context.Context, id uuid.UUID, email string) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*User, error)
	SetUserRole(ctx context.Context, id uuid.UUID, role string) error
}

func (su *SupabaseRepo) SignUp(ctx context.Context, email, password string, data map[string]interface{}) (uuid.UUID, error) {
	res, err := su.supabaseClient.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     data,
	})
	if err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "already registered") || strings.Contains(errMsg, "unique constraint") {
			return uuid.Nil, Conflict("email already in use")
		}
		if strings.Contains(errMsg, "invalid input syntax") {
			return uuid.Nil, Invalid("invalid input format")
		}
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	// autoconfirm projects return a session instead of a bare user
	if res.User.ID == uuid.Nil {
		return res.Session.User.ID, nil
	}
	return res.User.ID, nil
}

func (su *SupabaseRepo) SignIn(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, WrapError(ErrCodeUnauthorized, "invalid email or password", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, WrapError(ErrCodeUnauthorized, "failed to refresh token", err)
	}
	return resp, nil
}

func (mdb *MongodbRepo) CreateProfile(ctx context.Context, user *User) error {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, user)
	return mongoErr(err, nil, Conflict("user already exists"), "failed to insert user profile")
}

func (mdb *MongodbRepo) GetProfile(ctx context.Context, id uuid.UUID) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, err
	}
	var user User
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		return nil, mongoErr(err, ErrUserNotFound, nil, "failed to get user profile")
	}
	return &user, nil
}

// GetOrCreateProfile returns the profile for id, inserting a plain user profile
// the first time an identity is seen.
func (mdb *MongodbRepo) GetOrCreateProfile(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        id,
			"email":      email,
			"role":       RoleUser,
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user User
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		// lost an insert race to a concurrent request for the same identity
		if isDuplicate(err) {
			return mdb.GetProfile(ctx, id)
		}
		return nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*User, error) {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, Invalid("no fields to update")
	}
	fields["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user User
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if err != nil {
		return nil, mongoErr(err, ErrUserNotFound, Conflict("username already taken"), "failed to update user profile")
	}
	return &user, nil
}

func (mdb *MongodbRepo) SetUserRole(ctx context.Context, id uuid.UUID, role string) error {
	col, err := mdb.GetCollection(UsersColName)
	if err != nil {
		return err
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"role": role, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
