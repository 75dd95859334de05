package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/supabase-community/gotrue-go/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(token string) (*helpers.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*helpers.CustomClaims), args.Error(1)
}

type MockProfileResolver struct {
	mock.Mock
}

func (m *MockProfileResolver) ResolveProfile(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	args := m.Called(ctx, id, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockProfileResolver) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenResponse), args.Error(1)
}

func claimsFor(id uuid.UUID) *helpers.CustomClaims {
	return &helpers.CustomClaims{
		Email:            "ama@example.com",
		Role:             "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()},
	}
}

// authRouter echoes the resolved claims so tests can inspect them.
func authRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		v, ok := c.Get(UserKey)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		claims := v.(*helpers.EnhancedClaims)
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "role": claims.Role})
	})
	r.GET("/", handlers...)
	return r
}

func TestAuthenticator_Required(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		setup      func(v *MockVerifier, p *MockProfileResolver)
		request    func(req *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no credentials",
			setup:      func(v *MockVerifier, p *MockProfileResolver) {},
			request:    func(req *http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "authentication required",
		},
		{
			name: "bearer token with stored role",
			setup: func(v *MockVerifier, p *MockProfileResolver) {
				v.On("Verify", "good").Return(claimsFor(userID), nil)
				p.On("ResolveProfile", mock.Anything, userID, "ama@example.com").
					Return(&models.User{ID: userID, Role: models.RoleGuide}, nil)
			},
			request:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") },
			wantStatus: http.StatusOK,
			wantBody:   `"role":"guide"`,
		},
		{
			name: "unknown stored role falls back to user",
			setup: func(v *MockVerifier, p *MockProfileResolver) {
				v.On("Verify", "good").Return(claimsFor(userID), nil)
				p.On("ResolveProfile", mock.Anything, userID, mock.Anything).
					Return(&models.User{ID: userID, Role: "superuser"}, nil)
			},
			request:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") },
			wantStatus: http.StatusOK,
			wantBody:   `"role":"user"`,
		},
		{
			name: "rejected bearer token is not refreshed",
			setup: func(v *MockVerifier, p *MockProfileResolver) {
				v.On("Verify", "expired").Return(nil, errors.New("token is expired"))
			},
			request: func(req *http.Request) {
				req.Header.Set("Authorization", "Bearer expired")
				req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh"})
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid or expired token",
		},
		{
			name: "non uuid subject",
			setup: func(v *MockVerifier, p *MockProfileResolver) {
				v.On("Verify", "odd").Return(&helpers.CustomClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "service"}}, nil)
			},
			request:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer odd") },
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid user ID in token",
		},
		{
			name: "profile store failure",
			setup: func(v *MockVerifier, p *MockProfileResolver) {
				v.On("Verify", "good").Return(claimsFor(userID), nil)
				p.On("ResolveProfile", mock.Anything, userID, mock.Anything).Return(nil, errors.New("mongo down"))
			},
			request:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") },
			wantStatus: http.StatusInternalServerError,
			wantBody:   "failed to load user profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(MockVerifier)
			resolver := new(MockProfileResolver)
			tt.setup(verifier, resolver)
			auth := NewAuthenticator(verifier, resolver, testLogger, false)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.request(req)
			authRouter(auth.Required()).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			verifier.AssertExpectations(t)
			resolver.AssertExpectations(t)
			resolver.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthenticator_RefreshesExpiredCookie(t *testing.T) {
	userID := uuid.New()
	verifier := new(MockVerifier)
	resolver := new(MockProfileResolver)

	tokens := &types.TokenResponse{}
	tokens.AccessToken = "fresh"
	tokens.RefreshToken = "refresh-2"
	tokens.ExpiresIn = 3600

	verifier.On("Verify", "stale").Return(nil, errors.New("token is expired"))
	verifier.On("Verify", "fresh").Return(claimsFor(userID), nil)
	resolver.On("RefreshToken", mock.Anything, "refresh-1").Return(tokens, nil)
	resolver.On("ResolveProfile", mock.Anything, userID, mock.Anything).Return(&models.User{ID: userID, Role: models.RoleUser}, nil)

	auth := NewAuthenticator(verifier, resolver, testLogger, false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "stale"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-1"})
	authRouter(auth.Required()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := map[string]string{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	assert.Equal(t, "fresh", cookies[AccessTokenCookie])
	assert.Equal(t, "refresh-2", cookies[RefreshTokenCookie])
	verifier.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestAuthenticator_Optional(t *testing.T) {
	userID := uuid.New()
	verifier := new(MockVerifier)
	resolver := new(MockProfileResolver)
	verifier.On("Verify", "good").Return(claimsFor(userID), nil)
	verifier.On("Verify", "bad").Return(nil, errors.New("signature is invalid"))
	resolver.On("ResolveProfile", mock.Anything, userID, mock.Anything).Return(&models.User{ID: userID, Role: models.RoleAdmin}, nil)
	router := authRouter(NewAuthenticator(verifier, resolver, testLogger, false).Optional())

	tests := []struct {
		name     string
		header   string
		wantBody string
	}{
		{name: "anonymous", header: "", wantBody: `"anonymous":true`},
		{name: "valid token", header: "Bearer good", wantBody: `"role":"admin"`},
		{name: "invalid token stays anonymous", header: "Bearer bad", wantBody: `"anonymous":true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequireRole(t *testing.T) {
	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				c.Set(UserKey, &helpers.EnhancedClaims{UserID: uuid.New(), Role: role})
			}
			c.Next()
		}
	}

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "admin allowed", role: models.RoleAdmin, wantStatus: http.StatusOK},
		{name: "user forbidden", role: models.RoleUser, wantStatus: http.StatusForbidden},
		{name: "no claims", role: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			authRouter(withRole(tt.role), RequireRole(models.RoleAdmin)).
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
