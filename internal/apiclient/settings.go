package apiclient

import (
	"context"
	"net/http"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

type EmailConfigService struct {
	client *Client
}

func (s *EmailConfigService) Get(ctx context.Context) (*models.EmailConfig, error) {
	var out models.EmailConfig
	if err := s.client.do(ctx, call{op: "email.get", method: http.MethodGet, path: "/settings/email"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *EmailConfigService) Update(ctx context.Context, in models.EmailConfigInput) (*models.EmailConfig, error) {
	var out models.EmailConfig
	if err := s.client.do(ctx, call{op: "email.update", method: http.MethodPut, path: "/settings/email", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTest asks the backend to deliver a test message with the saved settings.
func (s *EmailConfigService) SendTest(ctx context.Context, in models.EmailTestInput) error {
	return s.client.do(ctx, call{op: "email.test", method: http.MethodPost, path: "/settings/email/test", body: in}, nil)
}

type SLAService struct {
	client *Client
}

func (s *SLAService) List(ctx context.Context) ([]models.SLAPolicy, error) {
	var out []models.SLAPolicy
	if err := s.client.do(ctx, call{op: "sla.list", method: http.MethodGet, path: "/settings/sla"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SLAService) Update(ctx context.Context, in models.SLAPolicyInput) ([]models.SLAPolicy, error) {
	var out []models.SLAPolicy
	if err := s.client.do(ctx, call{op: "sla.update", method: http.MethodPut, path: "/settings/sla", body: in}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
