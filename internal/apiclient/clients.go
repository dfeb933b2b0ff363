package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// ClientsService manages tenants.
type ClientsService struct {
	client *Client
}

func (s *ClientsService) List(ctx context.Context, search string, page, pageSize int) (*models.Page[models.Client], error) {
	q := url.Values{}
	if search != "" {
		q.Set("q", search)
	}
	setPaging(q, page, pageSize)

	var out models.Page[models.Client]
	if err := s.client.do(ctx, call{op: "clients.list", method: http.MethodGet, path: "/clients", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ClientsService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var out models.Client
	if err := s.client.do(ctx, call{op: "clients.get", method: http.MethodGet, path: idPath("/clients", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ClientsService) Create(ctx context.Context, in models.ClientInput) (*models.Client, error) {
	var out models.Client
	if err := s.client.do(ctx, call{op: "clients.create", method: http.MethodPost, path: "/clients", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ClientsService) Update(ctx context.Context, id uint, in models.ClientInput) (*models.Client, error) {
	var out models.Client
	if err := s.client.do(ctx, call{op: "clients.update", method: http.MethodPut, path: idPath("/clients", id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SitesService manages the sites of a client.
type SitesService struct {
	client *Client
}

func (s *SitesService) ListByClient(ctx context.Context, clientID uint) ([]models.Site, error) {
	var out []models.Site
	if err := s.client.do(ctx, call{op: "sites.list", method: http.MethodGet, path: idPath("/clients", clientID, "sites")}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SitesService) Get(ctx context.Context, id uint) (*models.Site, error) {
	var out models.Site
	if err := s.client.do(ctx, call{op: "sites.get", method: http.MethodGet, path: idPath("/sites", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SitesService) Create(ctx context.Context, clientID uint, in models.SiteInput) (*models.Site, error) {
	var out models.Site
	if err := s.client.do(ctx, call{op: "sites.create", method: http.MethodPost, path: idPath("/clients", clientID, "sites"), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *SitesService) Update(ctx context.Context, id uint, in models.SiteInput) (*models.Site, error) {
	var out models.Site
	if err := s.client.do(ctx, call{op: "sites.update", method: http.MethodPut, path: idPath("/sites", id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
