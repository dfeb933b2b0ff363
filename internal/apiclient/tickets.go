package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// TicketsService handles ticket operations
type TicketsService struct {
	client *Client
}

// List returns one page of tickets matching the filter.
func (s *TicketsService) List(ctx context.Context, f models.TicketFilter) (*models.Page[models.Ticket], error) {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Priority != "" {
		q.Set("priority", f.Priority)
	}
	if f.ClientID > 0 {
		q.Set("client_id", strconv.FormatUint(uint64(f.ClientID), 10))
	}
	setPaging(q, f.Page, f.PageSize)

	var out models.Page[models.Ticket]
	if err := s.client.do(ctx, call{op: "tickets.list", method: http.MethodGet, path: "/tickets", query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get retrieves a ticket by ID
func (s *TicketsService) Get(ctx context.Context, id uint) (*models.Ticket, error) {
	var out models.Ticket
	if err := s.client.do(ctx, call{op: "tickets.get", method: http.MethodGet, path: idPath("/tickets", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create creates a new ticket
func (s *TicketsService) Create(ctx context.Context, in models.TicketInput) (*models.Ticket, error) {
	var out models.Ticket
	if err := s.client.do(ctx, call{op: "tickets.create", method: http.MethodPost, path: "/tickets", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update updates an existing ticket
func (s *TicketsService) Update(ctx context.Context, id uint, in models.TicketInput) (*models.Ticket, error) {
	var out models.Ticket
	if err := s.client.do(ctx, call{op: "tickets.update", method: http.MethodPut, path: idPath("/tickets", id), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommentsService handles the comment thread of a ticket.
type CommentsService struct {
	client *Client
}

func (s *CommentsService) List(ctx context.Context, ticketID uint) ([]models.Comment, error) {
	var out []models.Comment
	if err := s.client.do(ctx, call{op: "comments.list", method: http.MethodGet, path: idPath("/tickets", ticketID, "comments")}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CommentsService) Create(ctx context.Context, ticketID uint, in models.CommentInput) (*models.Comment, error) {
	var out models.Comment
	if err := s.client.do(ctx, call{op: "comments.create", method: http.MethodPost, path: idPath("/tickets", ticketID, "comments"), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func setPaging(q url.Values, page, size int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("page_size", strconv.Itoa(size))
	}
}
