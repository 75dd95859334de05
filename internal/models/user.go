package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleGuide = "guide"
	RoleAdmin = "admin"
)

// User is the application profile kept next to the Supabase identity.
// The ID is the Supabase auth subject.
type User struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	Email     string    `bson:"email" json:"email" validate:"omitempty,email"`
	Password  string    `bson:"-" json:"password,omitempty"`
	Username  string    `bson:"username" json:"username" validate:"omitempty,min=3,max=32"`
	FullName  string    `bson:"fullname" json:"fullname"`
	Role      string    `bson:"role" json:"role"`
	Bio       string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	AvatarURL string    `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Actor is the authenticated caller as supplied by the auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleGuide, RoleAdmin:
		return true
	}
	return false
}

// ProfileUpdate carries the mutable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=32"`
	FullName  *string `json:"fullname" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=1000"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Role      *string `json:"role" validate:"omitempty,oneof=user guide admin"`
}
