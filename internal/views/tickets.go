package views

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helpdesk-io/helpdesk-web/internal/auth"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

type ticketRow struct {
	Ticket       models.Ticket
	Breached     bool
	PriorityTone string
}

// CategoryOption is a category labelled with its full path.
type CategoryOption struct {
	ID    uint
	Label string
}

// ThreadItem is one comment of a flattened thread.
type ThreadItem struct {
	Comment models.Comment
	Depth   int
	Indent  int
}

func priorityTone(p string) string {
	switch p {
	case models.PriorityCritical:
		return "danger"
	case models.PriorityHigh:
		return "warning"
	case models.PriorityMedium:
		return "info"
	}
	return "muted"
}

func categoryOptions(all []models.Category) []CategoryOption {
	out := make([]CategoryOption, 0, len(all))
	for _, cat := range all {
		out = append(out, CategoryOption{ID: cat.ID, Label: strings.Join(models.CategoryPath(all, cat.ID), " / ")})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// flattenThread walks reply trees depth first. Nesting is capped so deep
// threads stay readable.
func flattenThread(nodes []*models.CommentNode, depth int, out []ThreadItem) []ThreadItem {
	for _, n := range nodes {
		indent := depth
		if indent > 4 {
			indent = 4
		}
		out = append(out, ThreadItem{Comment: n.Comment, Depth: depth, Indent: indent * 2})
		out = flattenThread(n.Replies, depth+1, out)
	}
	return out
}

// TicketList shows a filtered page of tickets.
func (h *Handlers) TicketList(c *gin.Context) {
	var f models.TicketFilter
	filterErr := c.ShouldBindQuery(&f)
	if filterErr != nil {
		h.Logger.Debug("ticket filter rejected", zap.String("query", c.Request.URL.RawQuery), zap.Error(filterErr))
		f = models.TicketFilter{}
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = defaultPageSize
	}

	data := gin.H{
		"Title":      "Tickets",
		"Filter":     f,
		"Statuses":   models.TicketStatuses,
		"Priorities": models.TicketPriorities,
	}
	if filterErr != nil {
		data["FilterError"] = "The filter could not be read and has been cleared."
	}
	page, err := h.Client.Tickets.List(h.scope(c), f)
	if err != nil {
		h.loadFailed(c, "pages/tickets/list.html", data, err)
		return
	}

	now := h.Now()
	rows := make([]ticketRow, 0, len(page.Items))
	for i := range page.Items {
		t := page.Items[i]
		rows = append(rows, ticketRow{Ticket: t, Breached: t.ResponseBreached(now), PriorityTone: priorityTone(t.Priority)})
	}
	data["Rows"] = rows
	data["Pager"] = pagerFor(page, c)
	h.render(c, http.StatusOK, "pages/tickets/list.html", data)
}

// ticketFormData loads the choices a ticket form offers. Failures leave the
// choice empty rather than losing the user's input.
func (h *Handlers) ticketFormData(c *gin.Context, data gin.H) {
	var (
		clients    []models.Client
		categories []models.Category
	)
	g, gctx := errgroup.WithContext(h.scope(c))
	if u := h.user(c); u != nil && !h.can(c, auth.PermissionClientRead) {
		if u.ClientID != nil {
			clients = []models.Client{{ID: *u.ClientID, Name: "My organisation"}}
		}
	} else {
		g.Go(func() error {
			page, err := h.Client.Clients.List(gctx, "", 1, 100)
			if err != nil {
				h.Logger.Warn("client choices unavailable", zap.Error(err))
				return nil
			}
			clients = page.Items
			return nil
		})
	}
	g.Go(func() error {
		list, err := h.Client.Categories.List(gctx)
		if err != nil {
			h.Logger.Warn("category choices unavailable", zap.Error(err))
			return nil
		}
		categories = list
		return nil
	})
	_ = g.Wait()

	data["Clients"] = clients
	data["Categories"] = categoryOptions(categories)
	data["Statuses"] = models.TicketStatuses
	data["Priorities"] = models.TicketPriorities
}

// forceClient pins a customer's tickets to their own client.
func (h *Handlers) forceClient(c *gin.Context, in *models.TicketInput) {
	if u := h.user(c); u != nil && u.Role == string(models.RoleCustomer) && u.ClientID != nil {
		in.ClientID = *u.ClientID
	}
}

// TicketNew shows an empty ticket form.
func (h *Handlers) TicketNew(c *gin.Context) {
	form := models.TicketInput{Priority: models.PriorityMedium}
	h.forceClient(c, &form)
	data := gin.H{"Title": "New ticket", "Form": form}
	h.ticketFormData(c, data)
	h.render(c, http.StatusOK, "pages/tickets/form.html", data)
}

// TicketCreate opens a ticket and shows it.
func (h *Handlers) TicketCreate(c *gin.Context) {
	var in models.TicketInput
	errs := bind(c, &in)
	h.forceClient(c, &in)

	data := gin.H{"Title": "New ticket", "Form": in, "SelectedCategory": derefUint(in.CategoryID)}
	if errs != nil {
		h.ticketFormData(c, data)
		data["Errors"] = errs
		h.render(c, http.StatusUnprocessableEntity, "pages/tickets/form.html", data)
		return
	}

	ticket, err := h.Client.Tickets.Create(h.scope(c), in)
	if err != nil {
		h.ticketFormData(c, data)
		h.submitFailed(c, "pages/tickets/form.html", data, err)
		return
	}
	seeOther(c, fmt.Sprintf("/tickets/%d", ticket.ID))
}

// TicketShow shows a ticket with its comment thread.
func (h *Handlers) TicketShow(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}
	h.showTicket(c, id, http.StatusOK, gin.H{})
}

// showTicket renders the ticket page. extra carries a rejected form back
// onto the page.
func (h *Handlers) showTicket(c *gin.Context, id uint, status int, extra gin.H) {
	var (
		ticket      *models.Ticket
		comments    []models.Comment
		commentsErr error
		categories  []models.Category
		client      *models.Client
	)
	canUpdate := h.can(c, auth.PermissionTicketUpdate)

	g, ctx := errgroup.WithContext(h.scope(c))
	g.Go(func() (err error) {
		ticket, err = h.Client.Tickets.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		comments, commentsErr = h.Client.Comments.List(ctx, id)
		return nil
	})
	g.Go(func() error {
		list, err := h.Client.Categories.List(ctx)
		if err != nil {
			h.Logger.Debug("categories unavailable for ticket", zap.Error(err))
			return nil
		}
		categories = list
		return nil
	})

	data := gin.H{"Title": "Ticket", "Notice": notice(c.Request.URL.Query())}
	if err := g.Wait(); err != nil {
		h.loadFailed(c, "pages/tickets/show.html", data, err)
		return
	}

	if !h.can(c, auth.PermissionCommentInternal) {
		visible := comments[:0]
		for _, cm := range comments {
			if !cm.Internal {
				visible = append(visible, cm)
			}
		}
		comments = visible
	}

	data["Title"] = ticket.Number
	data["Ticket"] = ticket
	data["PriorityTone"] = priorityTone(ticket.Priority)
	data["Breached"] = ticket.ResponseBreached(h.Now())
	if h.Calendar != nil && !ticket.CreatedAt.IsZero() {
		end := h.Now()
		if ticket.ResolvedAt != nil {
			end = *ticket.ResolvedAt
		}
		data["WorkingAge"] = fmt.Sprintf("%.1f h", h.Calendar.WorkingHoursBetween(ticket.CreatedAt, end).Hours())
	}
	data["Thread"] = flattenThread(models.ThreadComments(comments), 0, nil)
	data["CanUpdate"] = canUpdate
	data["ShowStatus"] = true
	if ticket.CategoryID != nil {
		data["CategoryPath"] = models.CategoryPath(categories, *ticket.CategoryID)
	}
	if commentsErr != nil {
		if isUnauthorized(commentsErr) {
			h.expire(c)
			return
		}
		data["CommentsError"] = ErrorMessage(commentsErr)
		data["RetryURL"] = c.Request.URL.RequestURI()
	}
	if canUpdate {
		data["Form"] = models.TicketInput{
			Subject:     ticket.Subject,
			Description: ticket.Description,
			Status:      ticket.Status,
			Priority:    ticket.Priority,
			ClientID:    ticket.ClientID,
			SiteID:      ticket.SiteID,
			CategoryID:  ticket.CategoryID,
			AssigneeID:  ticket.AssigneeID,
		}
		data["SelectedCategory"] = derefUint(ticket.CategoryID)
		data["Categories"] = categoryOptions(categories)
		data["Statuses"] = models.TicketStatuses
		data["Priorities"] = models.TicketPriorities
		if h.can(c, auth.PermissionClientRead) {
			if cl, err := h.Client.Clients.Get(h.scope(c), ticket.ClientID); err == nil {
				client = cl
			}
		}
		if client == nil {
			client = &models.Client{ID: ticket.ClientID, Name: fmt.Sprintf("Client #%d", ticket.ClientID)}
		}
		data["Clients"] = []models.Client{*client}
	}
	for k, v := range extra {
		data[k] = v
	}
	h.render(c, status, "pages/tickets/show.html", data)
}

// TicketUpdate saves the edit form of a ticket.
func (h *Handlers) TicketUpdate(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var in models.TicketInput
	if errs := bind(c, &in); errs != nil {
		h.showTicket(c, id, http.StatusUnprocessableEntity, gin.H{
			"Form": in, "Errors": errs, "SelectedCategory": derefUint(in.CategoryID),
		})
		return
	}

	if _, err := h.Client.Tickets.Update(h.scope(c), id, in); err != nil {
		h.rejected(c, err, in, func(status int, extra gin.H) {
			extra["SelectedCategory"] = derefUint(in.CategoryID)
			h.showTicket(c, id, status, extra)
		})
		return
	}
	seeOther(c, fmt.Sprintf("/tickets/%d?saved=1", id))
}

// CommentCreate posts a reply on a ticket.
func (h *Handlers) CommentCreate(c *gin.Context) {
	id, ok := h.paramID(c, "id")
	if !ok {
		return
	}

	var in models.CommentInput
	errs := bind(c, &in)
	if !h.can(c, auth.PermissionCommentInternal) {
		in.Internal = false
	}
	if errs != nil {
		h.showTicket(c, id, http.StatusUnprocessableEntity, gin.H{"CommentForm": in, "CommentErrors": errs})
		return
	}

	comment, err := h.Client.Comments.Create(h.scope(c), id, in)
	if err != nil {
		if isUnauthorized(err) {
			h.expire(c)
			return
		}
		h.showTicket(c, id, http.StatusOK, gin.H{"CommentForm": in, "CommentMessage": ErrorMessage(err)})
		return
	}
	seeOther(c, fmt.Sprintf("/tickets/%d#comment-%d", id, comment.ID))
}
