package apiclient

import (
	"context"
	"net/http"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

type CategoriesService struct {
	client *Client
}

// List returns every category; the tree is small enough to fetch whole.
func (s *CategoriesService) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.client.do(ctx, call{op: "categories.list", method: http.MethodGet, path: "/categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CategoriesService) Get(ctx context.Context, id uint) (*models.Category, error) {
	var out models.Category
	if err := s.client.do(ctx, call{op: "categories.get", method: http.MethodGet, path: idPath("/categories", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CategoriesService) Create(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := s.client.do(ctx, call{op: "categories.create", method: http.MethodPost, path: "/categories", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CategoriesService) Update(ctx context.Context, id uint, in models.CategoryInput) (*models.Category, error) {
	var out models.Category
	if err := s.client.do(ctx, call{op: "categories.update", method: http.MethodPut, path: idPath("/categories", id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
