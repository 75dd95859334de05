package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	UserKey           = "user"
	AccessTokenCookie = "access_token"
	// #nosec G101 -- cookie name, not a credential
	RefreshTokenCookie = "refresh_token"
	refreshCookieAge   = 3600 * 24 * 30
)

// ProfileResolver is what the auth middleware needs from the user service.
type ProfileResolver interface {
	ResolveProfile(ctx context.Context, id uuid.UUID, email string) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.CodedErrorResponse(models.ErrCodeUnauthorized, msg))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SetAuthCookies stores a fresh token pair as http-only cookies.
func SetAuthCookies(c *gin.Context, tokens *types.TokenResponse, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, tokens.AccessToken, tokens.ExpiresIn, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, tokens.RefreshToken, refreshCookieAge, "/", "", secure, true)
}

func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

type authError struct {
	status int
	code   models.ErrorCode
	msg    string
}

// Authenticator resolves the caller from a bearer token or the access_token
// cookie. An expired cookie session is refreshed once with the refresh_token
// cookie. The caller's role always comes from the stored profile, never from
// the token.
type Authenticator struct {
	verifier      helpers.TokenVerifier
	users         ProfileResolver
	logger        *slog.Logger
	secureCookies bool
}

func NewAuthenticator(verifier helpers.TokenVerifier, users ProfileResolver, logger *slog.Logger, secureCookies bool) *Authenticator {
	return &Authenticator{verifier: verifier, users: users, logger: logger, secureCookies: secureCookies}
}

func hasCredentials(c *gin.Context) bool {
	if bearerToken(c) != "" {
		return true
	}
	cookie, err := c.Cookie(AccessTokenCookie)
	return err == nil && cookie != ""
}

func (a *Authenticator) authenticate(c *gin.Context) (*helpers.EnhancedClaims, *authError) {
	token := bearerToken(c)
	fromCookie := false
	if token == "" {
		cookie, err := c.Cookie(AccessTokenCookie)
		if err != nil || cookie == "" {
			return nil, &authError{http.StatusUnauthorized, models.ErrCodeUnauthorized, "authentication required"}
		}
		token, fromCookie = cookie, true
	}

	claims, err := a.verifier.Verify(token)
	if err != nil && fromCookie {
		claims, err = a.refresh(c)
	}
	if err != nil {
		a.logger.Debug("token rejected", "error", err)
		return nil, &authError{http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid or expired token"}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, &authError{http.StatusUnauthorized, models.ErrCodeUnauthorized, "invalid user ID in token"}
	}
	profile, err := a.users.ResolveProfile(c.Request.Context(), userID, claims.Email)
	if err != nil {
		a.logger.Error("failed to load user profile", "user_id", userID, "error", err)
		return nil, &authError{http.StatusInternalServerError, models.ErrCodeInternal, "failed to load user profile"}
	}

	role := profile.Role
	if !models.ValidRole(role) {
		role = models.RoleUser
	}
	return &helpers.EnhancedClaims{
		CustomClaims: claims,
		UserID:       userID,
		Role:         role,
		Email:        claims.Email,
		Username:     profile.Username,
		Fullname:     profile.FullName,
		AvatarURL:    profile.AvatarURL,
	}, nil
}

// Required rejects anonymous callers with 401.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, aerr := a.authenticate(c)
		if aerr != nil {
			c.AbortWithStatusJSON(aerr.status, models.CodedErrorResponse(aerr.code, aerr.msg))
			return
		}
		c.Set(UserKey, claims)
		c.Next()
	}
}

// Optional identifies the caller when credentials are present and lets
// anonymous or unverifiable requests through without claims.
func (a *Authenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasCredentials(c) {
			if claims, aerr := a.authenticate(c); aerr == nil {
				c.Set(UserKey, claims)
			}
		}
		c.Next()
	}
}

func (a *Authenticator) refresh(c *gin.Context) (*helpers.CustomClaims, error) {
	refreshToken, err := c.Cookie(RefreshTokenCookie)
	if err != nil || refreshToken == "" {
		return nil, models.ErrUnauthorized
	}
	tokens, err := a.users.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		a.logger.Info("token refresh failed", "error", err)
		return nil, err
	}
	SetAuthCookies(c, tokens, a.secureCookies)
	a.logger.Debug("token refreshed", "user_id", tokens.User.ID, "expires_in", tokens.ExpiresIn)
	return a.verifier.Verify(tokens.AccessToken)
}

// RequireRole admits callers holding one of roles. It must run after Authenticator.Required.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(UserKey)
		if !ok {
			unauthorized(c, "authentication required")
			return
		}
		claims, ok := v.(*helpers.EnhancedClaims)
		if !ok {
			unauthorized(c, "invalid user claims")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.CodedErrorResponse(models.ErrCodeForbidden, "insufficient role"))
			return
		}
		c.Next()
	}
}
