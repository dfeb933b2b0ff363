package models

import "time"

const (
	TicketStatusNew      = "new"
	TicketStatusOpen     = "open"
	TicketStatusPending  = "pending"
	TicketStatusResolved = "resolved"
	TicketStatusClosed   = "closed"
)

const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

var (
	TicketStatuses   = []string{TicketStatusNew, TicketStatusOpen, TicketStatusPending, TicketStatusResolved, TicketStatusClosed}
	TicketPriorities = []string{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
)

// Ticket represents a support ticket
type Ticket struct {
	ID               uint       `json:"id"`
	Number           string     `json:"number"`
	Subject          string     `json:"subject"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	ClientID         uint       `json:"client_id"`
	SiteID           *uint      `json:"site_id,omitempty"`
	CategoryID       *uint      `json:"category_id,omitempty"`
	AssigneeID       *uint      `json:"assignee_id,omitempty"`
	RequesterID      uint       `json:"requester_id"`
	ResponseDueAt    *time.Time `json:"response_due_at,omitempty"`
	ResolutionDueAt  *time.Time `json:"resolution_due_at,omitempty"`
	FirstRespondedAt *time.Time `json:"first_responded_at,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ResponseBreached reports whether the response SLA passed without a first response.
func (t *Ticket) ResponseBreached(now time.Time) bool {
	if t.ResponseDueAt == nil {
		return false
	}
	if t.FirstRespondedAt != nil {
		return t.FirstRespondedAt.After(*t.ResponseDueAt)
	}
	return now.After(*t.ResponseDueAt)
}

type TicketInput struct {
	Subject     string `json:"subject" form:"subject" binding:"required,max=200"`
	Description string `json:"description" form:"description" binding:"required"`
	Status      string `json:"status,omitempty" form:"status" binding:"omitempty,oneof=new open pending resolved closed"`
	Priority    string `json:"priority" form:"priority" binding:"required,oneof=critical high medium low"`
	ClientID    uint   `json:"client_id" form:"client_id" binding:"required"`
	SiteID      *uint  `json:"site_id,omitempty" form:"site_id"`
	CategoryID  *uint  `json:"category_id,omitempty" form:"category_id"`
	AssigneeID  *uint  `json:"assignee_id,omitempty" form:"assignee_id"`
}

// TicketFilter narrows the ticket list.
type TicketFilter struct {
	Query    string `form:"q"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	ClientID uint   `form:"client_id"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// Comment is threaded under a ticket through ParentID.
type Comment struct {
	ID         uint      `json:"id"`
	TicketID   uint      `json:"ticket_id"`
	ParentID   *uint     `json:"parent_id,omitempty"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	Internal   bool      `json:"internal"`
	CreatedAt  time.Time `json:"created_at"`
}

type CommentInput struct {
	Body     string `json:"body" form:"body" binding:"required"`
	ParentID *uint  `json:"parent_id,omitempty" form:"parent_id"`
	Internal bool   `json:"internal" form:"internal"`
}

// CommentNode is a comment together with its replies.
type CommentNode struct {
	Comment
	Replies []*CommentNode
}

// ThreadComments arranges a flat comment list into reply trees. Comments whose
// parent is not in the list are treated as roots. Input order is preserved.
func ThreadComments(comments []Comment) []*CommentNode {
	nodes := make(map[uint]*CommentNode, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &CommentNode{Comment: comments[i]}
	}
	roots := make([]*CommentNode, 0, len(comments))
	for i := range comments {
		n := nodes[comments[i].ID]
		if pid := comments[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok && *pid != comments[i].ID {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
