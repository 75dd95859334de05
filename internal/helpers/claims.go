package helpers

import "github.com/google/uuid"

// EnhancedClaims is the verified token joined with the caller's stored profile.
// The auth middleware stores it under the "user" context key.
type EnhancedClaims struct {
	*CustomClaims
	UserID    uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username,omitempty"`
	Fullname  string    `json:"fullname,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}

func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == "admin"
}

func (ec *EnhancedClaims) IsGuide() bool {
	return ec.Role == "guide"
}

func (ec *EnhancedClaims) HasRole(role string) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID uuid.UUID) bool {
	return ec.UserID == userID
}
