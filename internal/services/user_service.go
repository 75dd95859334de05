package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

type UserService struct {
	auth     models.AuthRepo
	profiles models.ProfileRepo
	logger   *slog.Logger
}

func NewUserService(auth models.AuthRepo, profiles models.ProfileRepo, logger *slog.Logger) *UserService {
	return &UserService{
		auth:     auth,
		profiles: profiles,
		logger:   logger,
	}
}

// CreateUser registers the identity with Supabase and stores a plain user profile.
func (us *UserService) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := models.Validate.Var(user.Email, "required,email"); err != nil {
		return nil, models.Invalid("a valid email is required")
	}
	if err := models.Validate.Struct(user); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid user", err)
	}
	if !helpers.IsPasswordStrong(user.Password) {
		return nil, models.Invalid("password is not strong enough")
	}

	id, err := us.auth.SignUp(ctx, user.Email, user.Password, map[string]interface{}{
		"username": user.Username,
		"fullname": user.FullName,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user.ID = id
	user.Password = ""
	user.Role = models.RoleUser
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := us.profiles.CreateProfile(ctx, user); err != nil {
		if models.IsDomainError(err, models.ErrCodeConflict) {
			return us.profiles.GetProfile(ctx, id)
		}
		return nil, err
	}
	return user, nil
}

func (us *UserService) AuthenticateUser(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, models.Invalid("invalid email format")
	}
	if err := models.Validate.Var(password, "required,min=8"); err != nil {
		return nil, models.Invalid("invalid password format")
	}
	return us.auth.SignIn(ctx, email, password)
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, models.NewError(models.ErrCodeUnauthorized, "refresh token is required")
	}
	return us.auth.RefreshToken(ctx, refreshToken)
}

// ResolveProfile loads the caller's profile, creating one for identities that
// signed up outside this API.
func (us *UserService) ResolveProfile(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	if id == uuid.Nil {
		return nil, models.ErrUnauthorized
	}
	return us.profiles.GetOrCreateProfile(ctx, id, email)
}

func (us *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, models.Invalid("invalid user ID")
	}
	return us.profiles.GetProfile(ctx, id)
}

// UpdateUser edits a profile as its owner or an admin. Role changes are admin-only.
func (us *UserService) UpdateUser(ctx context.Context, actor models.Actor, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	if err := Authorize(actor, &models.User{ID: id}, models.RelationOwner, "edit this profile"); err != nil {
		return nil, err
	}
	if upd.Role != nil && !actor.IsAdmin() {
		return nil, models.Forbidden("only admins can change roles")
	}
	if err := models.Validate.Struct(upd); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid profile update", err)
	}

	fields := map[string]interface{}{}
	if upd.Username != nil {
		fields["username"] = helpers.StringTrim(*upd.Username)
	}
	if upd.FullName != nil {
		fields["fullname"] = helpers.StringTrim(*upd.FullName)
	}
	if upd.Bio != nil {
		fields["bio"] = *upd.Bio
	}
	if upd.Location != nil {
		fields["location"] = *upd.Location
	}
	if upd.AvatarURL != nil {
		fields["avatar_url"] = *upd.AvatarURL
	}
	if upd.Role != nil {
		fields["role"] = *upd.Role
	}

	updated, err := us.profiles.UpdateProfile(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if upd.Role != nil {
		us.logger.Info("user role changed", "user_id", id, "role", *upd.Role, "changed_by", actor.ID)
	}
	return updated, nil
}
