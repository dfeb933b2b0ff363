package apiclient

import (
	"context"
	"net/http"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// AuthService handles authentication against the backend.
type AuthService struct {
	client *Client
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

// TokenResponse is returned by POST /auth/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login exchanges credentials for tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := s.client.do(ctx, call{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh trades a refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := s.client.do(ctx, call{
		op:     "auth.refresh",
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   map[string]string{"refresh_token": refreshToken},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the user owning the access token in ctx.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := s.client.do(ctx, call{op: "auth.me", method: http.MethodGet, path: "/auth/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the refresh token server side.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.client.do(ctx, call{
		op:     "auth.logout",
		method: http.MethodPost,
		path:   "/auth/logout",
		body:   map[string]string{"refresh_token": refreshToken},
	}, nil)
}
