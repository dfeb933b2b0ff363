package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// UsersService handles user operations
type UsersService struct {
	client *Client
}

func (s *UsersService) List(ctx context.Context, role string, page, pageSize int) (*models.Page[models.User], error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	setPaging(q, page, pageSize)

	var out models.Page[models.User]
	if err := s.client.do(ctx, call{op: "users.list", method: http.MethodGet, path: "/users", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UsersService) Get(ctx context.Context, id uint) (*models.User, error) {
	var out models.User
	if err := s.client.do(ctx, call{op: "users.get", method: http.MethodGet, path: idPath("/users", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UsersService) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := s.client.do(ctx, call{op: "users.create", method: http.MethodPost, path: "/users", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UsersService) Update(ctx context.Context, id uint, in models.UserInput) (*models.User, error) {
	var out models.User
	if err := s.client.do(ctx, call{op: "users.update", method: http.MethodPut, path: idPath("/users", id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
