package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// DashboardService provides dashboard data
type DashboardService struct {
	client *Client
}

func (s *DashboardService) Charts(ctx context.Context) (*models.DashboardCharts, error) {
	var out models.DashboardCharts
	if err := s.client.do(ctx, call{op: "dashboard.charts", method: http.MethodGet, path: "/dashboard/charts"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := s.client.do(ctx, call{op: "dashboard.stats", method: http.MethodGet, path: "/dashboard/stats"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ReportsService struct {
	client *Client
}

// Tickets returns the ticket report for the inclusive date range (YYYY-MM-DD).
func (s *ReportsService) Tickets(ctx context.Context, from, to string) (*models.TicketReport, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	var out models.TicketReport
	if err := s.client.do(ctx, call{op: "reports.tickets", method: http.MethodGet, path: "/reports/tickets", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type BitLockerService struct {
	client *Client
}

func (s *BitLockerService) Volumes(ctx context.Context, assetID string) (*models.BitLockerReport, error) {
	var out models.BitLockerReport
	path := "/bitlocker/" + url.PathEscape(assetID)
	if err := s.client.do(ctx, call{op: "bitlocker.get", method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
