// Package views holds the page handlers. Each handler fetches what its page
// needs from the backend with the signed-in user's token, contains any
// failure to its own page, and renders a template.
package views

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-web/internal/apiclient"
	"github.com/helpdesk-io/helpdesk-web/internal/auth"
	"github.com/helpdesk-io/helpdesk-web/internal/format"
	"github.com/helpdesk-io/helpdesk-web/internal/middleware"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
	"github.com/helpdesk-io/helpdesk-web/internal/routing"
	"github.com/helpdesk-io/helpdesk-web/internal/session"
	"github.com/helpdesk-io/helpdesk-web/internal/validation"
)

const defaultPageSize = 25

// Deps wires the handlers.
type Deps struct {
	Client      *apiclient.Client
	Sessions    *session.Manager
	Guards      *middleware.Guards
	Renderer    middleware.Renderer
	Session     middleware.SessionConfig
	RBAC        *auth.RBAC
	Calendar    *format.BusinessCalendar
	Workday     [2]string
	Metrics     http.Handler
	DefaultView func() string
	Logger      *zap.Logger
	Now         func() time.Time
}

// Handlers implements every page in the route table.
type Handlers struct {
	Deps
}

func New(d Deps) *Handlers {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.RBAC == nil {
		d.RBAC = auth.NewRBAC()
	}
	if d.DefaultView == nil {
		d.DefaultView = func() string { return "/dashboard" }
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Workday[0] == "" {
		d.Workday = [2]string{"09:00", "17:00"}
	}
	return &Handlers{Deps: d}
}

// Register adds every handler under the name routes.yaml refers to it by.
func (h *Handlers) Register(reg *routing.HandlerRegistry) error {
	return reg.RegisterBatch(map[string]gin.HandlerFunc{
		"auth.login_page": h.LoginPage,
		"auth.login":      h.Login,
		"auth.logout":     h.Logout,
		"system.health":   h.Health,
		"system.metrics":  h.MetricsEndpoint,

		"dashboard.show": h.Dashboard,

		"tickets.list":    h.TicketList,
		"tickets.new":     h.TicketNew,
		"tickets.create":  h.TicketCreate,
		"tickets.show":    h.TicketShow,
		"tickets.update":  h.TicketUpdate,
		"comments.create": h.CommentCreate,

		"clients.list":   h.ClientList,
		"clients.new":    h.ClientNew,
		"clients.create": h.ClientCreate,
		"clients.show":   h.ClientShow,
		"clients.update": h.ClientUpdate,
		"sites.list":     h.SiteList,
		"sites.create":   h.SiteCreate,
		"sites.show":     h.SiteShow,
		"sites.update":   h.SiteUpdate,

		"users.list":   h.UserList,
		"users.new":    h.UserNew,
		"users.create": h.UserCreate,
		"users.show":   h.UserShow,
		"users.update": h.UserUpdate,

		"categories.list":   h.CategoryList,
		"categories.create": h.CategoryCreate,
		"categories.show":   h.CategoryShow,
		"categories.update": h.CategoryUpdate,

		"settings.email":        h.EmailSettings,
		"settings.email_update": h.EmailSettingsUpdate,
		"settings.email_test":   h.EmailSettingsTest,
		"settings.sla":          h.SLASettings,
		"settings.sla_update":   h.SLASettingsUpdate,

		"reports.show":     h.Reports,
		"reports.export":   h.ReportsExport,
		"assets.bitlocker": h.BitLocker,
	})
}

// scope returns the request context carrying the session's access token.
func (h *Handlers) scope(c *gin.Context) context.Context {
	return apiclient.WithAccessToken(c.Request.Context(), middleware.CurrentState(c).Tokens.AccessToken)
}

func (h *Handlers) can(c *gin.Context, perm auth.Permission) bool {
	return h.RBAC.HasPermission(middleware.CurrentState(c).Role(), perm)
}

func (h *Handlers) user(c *gin.Context) *models.User {
	return middleware.CurrentState(c).User
}

func (h *Handlers) render(c *gin.Context, code int, name string, data gin.H) {
	h.Renderer.HTML(c, code, name, data)
}

// loadFailed contains a failed fetch to the page it happened on: the page is
// rendered with an error panel and a Retry link back to the same URL.
// A rejected token ends the session instead.
func (h *Handlers) loadFailed(c *gin.Context, name string, data gin.H, err error) {
	switch {
	case apiclient.IsUnauthorized(err):
		h.expire(c)
		return
	case apiclient.IsNotFound(err):
		h.render(c, http.StatusNotFound, "pages/error.html", gin.H{
			"Title":   "Not found",
			"Message": ErrorMessage(err),
		})
		return
	case apiclient.IsForbidden(err):
		h.render(c, http.StatusForbidden, "pages/error.html", gin.H{
			"Title":   "Access denied",
			"Message": ErrorMessage(err),
		})
		return
	}

	h.Logger.Warn("page data unavailable",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err))
	if data == nil {
		data = gin.H{}
	}
	data["LoadError"] = ErrorMessage(err)
	data["RetryURL"] = c.Request.URL.RequestURI()
	h.render(c, http.StatusOK, name, data)
}

// submitFailed re-renders a form after the backend refused or failed a
// write. Field errors reported by the backend are shown inline.
func (h *Handlers) submitFailed(c *gin.Context, name string, data gin.H, err error) {
	if apiclient.IsUnauthorized(err) {
		h.expire(c)
		return
	}
	status := http.StatusOK
	if fields := apiclient.FieldErrors(err); len(fields) > 0 {
		data["Errors"] = fields
		status = http.StatusUnprocessableEntity
	}
	var apiErr *apiclient.APIError
	if asAPIError(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
		status = http.StatusUnprocessableEntity
	}
	data["Message"] = ErrorMessage(err)
	h.Logger.Info("form submission failed",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	h.render(c, status, name, data)
}

// expire ends a session the backend no longer accepts and sends the browser
// to sign in again, coming back here afterwards.
func (h *Handlers) expire(c *gin.Context) {
	h.Sessions.Logout(c.Request.Context(), middleware.SessionID(c))
	middleware.ClearSessionCookie(c, h.Session)
	h.Guards.Unauthenticated(c)
}

// bind reads a form into obj. A nil map means the input is valid.
func bind(c *gin.Context, obj any) map[string]string {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil
	}
	if fields := validation.FieldErrors(err); len(fields) > 0 {
		return fields
	}
	return map[string]string{"form": "Some values could not be read. Please check the form."}
}

// paramID parses a numeric path parameter, rendering 404 when it is not one.
func (h *Handlers) paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.render(c, http.StatusNotFound, "pages/error.html", gin.H{
			"Title":   "Not found",
			"Message": "The requested item was not found.",
		})
		return 0, false
	}
	return uint(id), true
}

// seeOther finishes a successful form post (post/redirect/get).
func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// Pager is the view of a list page's position.
type Pager struct {
	Page       int
	TotalPages int
	Total      int
	PrevURL    string
	NextURL    string
}

func pagerFor[T any](p *models.Page[T], c *gin.Context) Pager {
	pg := Pager{Page: p.Page, TotalPages: p.TotalPages(), Total: p.Total}
	link := func(n int) string {
		q := c.Request.URL.Query()
		q.Set("page", strconv.Itoa(n))
		return c.Request.URL.Path + "?" + q.Encode()
	}
	if p.HasPrev() {
		pg.PrevURL = link(p.Page - 1)
	}
	if p.HasNext() {
		pg.NextURL = link(p.Page + 1)
	}
	return pg
}

func pageParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// notice maps the flag a post/redirect/get leaves in the query to a banner.
func notice(q url.Values) string {
	switch {
	case q.Has("saved"):
		return "Changes saved."
	case q.Has("sent"):
		return "Test message sent."
	case q.Has("created"):
		return "Created."
	}
	return ""
}

func derefUint(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}

// rejected re-renders a page after the backend refused or failed a write,
// keeping what the user submitted.
func (h *Handlers) rejected(c *gin.Context, err error, form any, show func(status int, extra gin.H)) {
	if isUnauthorized(err) {
		h.expire(c)
		return
	}
	extra := gin.H{"Form": form, "Message": ErrorMessage(err)}
	status := http.StatusOK
	if fields := fieldErrors(err); len(fields) > 0 {
		extra["Errors"], status = fields, http.StatusUnprocessableEntity
	}
	show(status, extra)
}
