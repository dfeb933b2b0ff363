package views

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/helpdesk-io/helpdesk-web/internal/format"
	"github.com/helpdesk-io/helpdesk-web/internal/middleware"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
	"github.com/helpdesk-io/helpdesk-web/internal/routing"
	"github.com/helpdesk-io/helpdesk-web/internal/session"
	"github.com/helpdesk-io/helpdesk-web/internal/testutil"
	"github.com/helpdesk-io/helpdesk-web/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	binding.Validator = validation.New()
}

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type renderedPage struct {
	Code int
	Name string
	Data gin.H
}

// stubRenderer records what would have been rendered.
type stubRenderer struct {
	mu    sync.Mutex
	pages []renderedPage
}

func (r *stubRenderer) HTML(c *gin.Context, code int, name string, data interface{}) {
	d, _ := data.(gin.H)
	r.mu.Lock()
	r.pages = append(r.pages, renderedPage{Code: code, Name: name, Data: d})
	r.mu.Unlock()
	c.String(code, name)
}

func (r *stubRenderer) last(t *testing.T) renderedPage {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.pages, "nothing was rendered")
	return r.pages[len(r.pages)-1]
}

type fixture struct {
	engine   *gin.Engine
	backend  *testutil.FakeBackend
	store    *session.MemoryStore
	renderer *stubRenderer
}

const fixtureSession = "sess-1"

func uintPtr(v uint) *uint { return &v }

// newFixture serves the full route table with pass-through guards and the
// given user signed in. A nil user browses anonymously.
func newFixture(t *testing.T, user *models.User) *fixture {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	client := backend.Client()
	store := session.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	mgr := session.NewManager(store, client.Auth, session.Options{TTL: time.Hour})

	renderer := &stubRenderer{}
	cookie := middleware.SessionConfig{CookieName: "helpdesk_session", MaxAge: time.Hour}
	guards := middleware.NewGuards(middleware.GuardOptions{Manager: mgr, Session: cookie, Renderer: renderer})
	cal, err := format.NewBusinessCalendar("09:00", "17:00", nil)
	require.NoError(t, err)

	h := New(Deps{
		Client:   client,
		Sessions: mgr,
		Guards:   guards,
		Renderer: renderer,
		Session:  cookie,
		Calendar: cal,
		Now:      func() time.Time { return fixedNow },
	})

	var state session.State
	id := ""
	if user != nil {
		id = fixtureSession
		state = session.State{User: user, Tokens: models.Tokens{AccessToken: "tok-" + user.Role}}
		require.NoError(t, store.Save(context.Background(), &session.Record{ID: id, User: user, Tokens: state.Tokens}, time.Hour))
	}

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		middleware.AttachState(c, id, state)
		c.Next()
	})

	reg := routing.NewHandlerRegistry()
	pass := func(c *gin.Context) { c.Next() }
	require.NoError(t, reg.RegisterMiddlewareBatch(map[string]gin.HandlerFunc{
		"auth": pass, "admin": pass, "reports": pass, "assets": pass,
	}))
	require.NoError(t, h.Register(reg))
	configs, err := routing.DefaultConfigs()
	require.NoError(t, err)
	require.NoError(t, routing.Build(engine, reg, configs, routing.Options{}))

	return &fixture{engine: engine, backend: backend, store: store, renderer: renderer}
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (f *fixture) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

var (
	agent    = &models.User{ID: 5, Name: "Ada", Role: "Agent"}
	admin    = &models.User{ID: 1, Name: "Root", Role: "Admin"}
	customer = &models.User{ID: 9, Name: "Cy", Role: "Customer", ClientID: uintPtr(42)}
)

func emptyPage() map[string]any {
	return map[string]any{"items": []any{}, "total": 0, "page": 1, "page_size": 25}
}

func TestDashboard(t *testing.T) {
	t.Run("loads both panels", func(t *testing.T) {
		f := newFixture(t, agent)
		f.backend.OK(http.MethodGet, "/dashboard/charts", map[string]any{"sla_breaches": 2})
		f.backend.OK(http.MethodGet, "/dashboard/stats", map[string]any{"open_tickets": 7})

		w := f.get("/dashboard")
		require.Equal(t, http.StatusOK, w.Code)
		page := f.renderer.last(t)
		assert.Equal(t, "pages/dashboard.html", page.Name)
		assert.Equal(t, 7, page.Data["Stats"].(*models.DashboardStats).OpenTickets)
		assert.Equal(t, "Bearer tok-Agent", f.backend.LastAuth())
	})

	t.Run("a failed load shows the error panel with retry", func(t *testing.T) {
		f := newFixture(t, agent)
		f.backend.Fail(http.MethodGet, "/dashboard/charts", http.StatusInternalServerError, "db down")
		f.backend.OK(http.MethodGet, "/dashboard/stats", map[string]any{"open_tickets": 7})

		w := f.get("/dashboard")
		assert.Equal(t, http.StatusOK, w.Code)
		page := f.renderer.last(t)
		assert.Equal(t, "pages/dashboard.html", page.Name)
		assert.Equal(t, "The server encountered an error. Please try again.", page.Data["LoadError"])
		assert.Equal(t, "/dashboard", page.Data["RetryURL"])
		assert.Nil(t, page.Data["Stats"])
	})
}

func TestRejectedTokenEndsSession(t *testing.T) {
	f := newFixture(t, agent)
	f.backend.Fail(http.MethodGet, "/tickets/7", http.StatusUnauthorized, "token expired")

	w := f.get("/tickets/7")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	_, err := f.store.Get(context.Background(), fixtureSession)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Contains(t, w.Header().Values("Set-Cookie")[0], "helpdesk_session=;")
}

func TestNotFound(t *testing.T) {
	f := newFixture(t, agent)
	f.backend.Fail(http.MethodGet, "/clients/99", http.StatusNotFound, "no such client")

	w := f.get("/clients/abc")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "pages/error.html", f.renderer.last(t).Name)
	assert.Zero(t, f.backend.Total())

	w = f.get("/clients/99")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "The requested item was not found.", f.renderer.last(t).Data["Message"])
}

func TestTicketListClearsUnreadableFilter(t *testing.T) {
	f := newFixture(t, agent)
	var got url.Values
	f.backend.Handle(http.MethodGet, "/tickets", func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		testutil.WriteEnvelope(w, http.StatusOK, map[string]any{"items": []any{}, "total": 0, "page": 1, "page_size": 25}, "")
	})

	require.Equal(t, http.StatusOK, f.get("/tickets?status=open&page=two").Code)
	page := f.renderer.last(t)
	assert.Equal(t, "The filter could not be read and has been cleared.", page.Data["FilterError"])
	assert.Equal(t, models.TicketFilter{Page: 1, PageSize: defaultPageSize}, page.Data["Filter"])
	assert.Empty(t, got.Get("status"), "a half-read filter is not sent")

	require.Equal(t, http.StatusOK, f.get("/tickets?status=open&page=2").Code)
	assert.Nil(t, f.renderer.last(t).Data["FilterError"])
	assert.Equal(t, "open", got.Get("status"))
}

func TestTicketCreate(t *testing.T) {
	valid := url.Values{
		"subject":     {"Printer on fire"},
		"description": {"Smoke everywhere"},
		"priority":    {"high"},
		"client_id":   {"42"},
	}

	t.Run("invalid input never reaches the backend", func(t *testing.T) {
		f := newFixture(t, agent)
		f.backend.OK(http.MethodGet, "/clients", emptyPage())
		f.backend.OK(http.MethodGet, "/categories", []any{})

		w := f.post("/tickets", url.Values{"description": {"x"}, "priority": {"urgent"}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		page := f.renderer.last(t)
		assert.Equal(t, "pages/tickets/form.html", page.Name)
		errs := page.Data["Errors"].(map[string]string)
		assert.Equal(t, "This field is required", errs["subject"])
		assert.Equal(t, "Must be one of: critical, high, medium, low", errs["priority"])
		assert.Zero(t, f.backend.Hits(http.MethodPost, "/tickets"))
	})

	t.Run("success redirects to the new ticket", func(t *testing.T) {
		f := newFixture(t, agent)
		f.backend.OK(http.MethodPost, "/tickets", map[string]any{"id": 12, "number": "T-12"})

		w := f.post("/tickets", valid)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/tickets/12", w.Header().Get("Location"))
	})

	t.Run("customers always file under their own client", func(t *testing.T) {
		f := newFixture(t, customer)
		var got models.TicketInput
		f.backend.Handle(http.MethodPost, "/tickets", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			testutil.WriteEnvelope(w, http.StatusCreated, map[string]any{"id": 13}, "")
		})

		form := url.Values{}
		for k, v := range valid {
			form[k] = v
		}
		form.Set("client_id", "77")
		w := f.post("/tickets", form)
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, uint(42), got.ClientID)
	})

	t.Run("backend failure keeps the form", func(t *testing.T) {
		f := newFixture(t, agent)
		f.backend.Fail(http.MethodPost, "/tickets", http.StatusBadGateway, "upstream")

		w := f.post("/tickets", valid)
		assert.Equal(t, http.StatusOK, w.Code)
		page := f.renderer.last(t)
		assert.Equal(t, "The server encountered an error. Please try again.", page.Data["Message"])
		assert.Equal(t, "Printer on fire", page.Data["Form"].(models.TicketInput).Subject)
	})
}

func ticketFixture(t *testing.T, user *models.User) *fixture {
	t.Helper()
	f := newFixture(t, user)
	f.backend.OK(http.MethodGet, "/tickets/7", map[string]any{
		"id": 7, "number": "T-7", "subject": "VPN down", "status": "open", "priority": "critical", "client_id": 42,
	})
	f.backend.OK(http.MethodGet, "/categories", []any{})
	f.backend.OK(http.MethodGet, "/clients/42", map[string]any{"id": 42, "name": "Acme"})
	return f
}

var threadComments = []map[string]any{
	{"id": 1, "ticket_id": 7, "body": "Looking into it", "author_name": "Ada"},
	{"id": 2, "ticket_id": 7, "parent_id": 1, "body": "Thanks", "author_name": "Cy"},
	{"id": 3, "ticket_id": 7, "body": "Customer is difficult", "internal": true, "author_name": "Ada"},
}

func TestTicketShow(t *testing.T) {
	t.Run("customers never see internal comments", func(t *testing.T) {
		f := ticketFixture(t, customer)
		f.backend.OK(http.MethodGet, "/tickets/7/comments", threadComments)

		require.Equal(t, http.StatusOK, f.get("/tickets/7").Code)
		thread := f.renderer.last(t).Data["Thread"].([]ThreadItem)
		require.Len(t, thread, 2)
		assert.Equal(t, uint(1), thread[0].Comment.ID)
		assert.Equal(t, 2, thread[1].Indent)
		assert.Equal(t, false, f.renderer.last(t).Data["CanUpdate"])
	})

	t.Run("agents see the whole thread and the edit form", func(t *testing.T) {
		f := ticketFixture(t, agent)
		f.backend.OK(http.MethodGet, "/tickets/7/comments", threadComments)

		require.Equal(t, http.StatusOK, f.get("/tickets/7?saved=1").Code)
		page := f.renderer.last(t)
		assert.Len(t, page.Data["Thread"].([]ThreadItem), 3)
		assert.Equal(t, true, page.Data["CanUpdate"])
		assert.Equal(t, "Changes saved.", page.Data["Notice"])
		assert.Equal(t, "Acme", page.Data["Clients"].([]models.Client)[0].Name)
	})

	t.Run("open tickets show working time so far", func(t *testing.T) {
		f := newFixture(t, agent)
		f.backend.OK(http.MethodGet, "/tickets/8", map[string]any{
			"id": 8, "number": "T-8", "subject": "Printer jam", "status": "open", "priority": "low",
			"client_id": 42, "created_at": "2024-03-15T10:00:00Z",
		})
		f.backend.OK(http.MethodGet, "/tickets/8/comments", []any{})
		f.backend.OK(http.MethodGet, "/categories", []any{})
		f.backend.OK(http.MethodGet, "/clients/42", map[string]any{"id": 42, "name": "Acme"})

		require.Equal(t, http.StatusOK, f.get("/tickets/8").Code)
		assert.Equal(t, "2.0 h", f.renderer.last(t).Data["WorkingAge"])
	})

	t.Run("comment failure stays inside its panel", func(t *testing.T) {
		f := ticketFixture(t, agent)
		f.backend.Fail(http.MethodGet, "/tickets/7/comments", http.StatusServiceUnavailable, "busy")

		require.Equal(t, http.StatusOK, f.get("/tickets/7").Code)
		page := f.renderer.last(t)
		assert.NotNil(t, page.Data["Ticket"])
		assert.Equal(t, "The server encountered an error. Please try again.", page.Data["CommentsError"])
		assert.Nil(t, page.Data["LoadError"])
	})
}

func TestCommentCreate(t *testing.T) {
	t.Run("customers cannot post internal notes", func(t *testing.T) {
		f := ticketFixture(t, customer)
		var got models.CommentInput
		f.backend.Handle(http.MethodPost, "/tickets/7/comments", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			testutil.WriteEnvelope(w, http.StatusCreated, map[string]any{"id": 31}, "")
		})

		w := f.post("/tickets/7/comments", url.Values{"body": {"hello"}, "internal": {"true"}})
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/tickets/7#comment-31", w.Header().Get("Location"))
		assert.False(t, got.Internal)
	})

	t.Run("an empty reply is refused inline", func(t *testing.T) {
		f := ticketFixture(t, agent)
		f.backend.OK(http.MethodGet, "/tickets/7/comments", []any{})

		w := f.post("/tickets/7/comments", url.Values{"body": {""}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		page := f.renderer.last(t)
		assert.Equal(t, "pages/tickets/show.html", page.Name)
		assert.Contains(t, page.Data["CommentErrors"], "body")
		assert.Zero(t, f.backend.Hits(http.MethodPost, "/tickets/7/comments"))
	})
}

func TestBackendFieldErrorsShowInline(t *testing.T) {
	f := newFixture(t, admin)
	f.backend.Handle(http.MethodPost, "/clients", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"error":"validation failed","fields":{"code":"already taken"}}`))
	})

	w := f.post("/clients", url.Values{"name": {"Acme"}, "code": {"ACME"}, "contact_email": {"ops@acme.test"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	page := f.renderer.last(t)
	assert.Equal(t, "pages/clients/form.html", page.Name)
	assert.Equal(t, map[string]string{"code": "already taken"}, page.Data["Errors"])
	assert.Equal(t, "validation failed", page.Data["Message"])
}

func TestClientUpdateRedirectsAfterSave(t *testing.T) {
	f := newFixture(t, admin)
	f.backend.OK(http.MethodPut, "/clients/42", map[string]any{"id": 42, "name": "Acme"})

	w := f.post("/clients/42", url.Values{"name": {"Acme"}, "code": {"ACME"}, "contact_email": {"ops@acme.test"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/clients/42?saved=1", w.Header().Get("Location"))
}

func TestClientShowKeepsClientWhenSitesFail(t *testing.T) {
	f := newFixture(t, agent)
	f.backend.OK(http.MethodGet, "/clients/42", map[string]any{"id": 42, "name": "Acme"})
	f.backend.Fail(http.MethodGet, "/clients/42/sites", http.StatusInternalServerError, "boom")

	require.Equal(t, http.StatusOK, f.get("/clients/42").Code)
	page := f.renderer.last(t)
	assert.Equal(t, "Acme", page.Data["Title"])
	assert.NotEmpty(t, page.Data["SitesError"])
}

func TestUserCreate(t *testing.T) {
	f := newFixture(t, admin)
	f.backend.OK(http.MethodGet, "/clients", emptyPage())

	w := f.post("/users", url.Values{"email": {"new@example.com"}, "name": {"New"}, "role": {"Customer"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := f.renderer.last(t).Data["Errors"].(map[string]string)
	assert.Equal(t, "This field is required", errs["password"])
	assert.Equal(t, "Customers must belong to a client", errs["client_id"])
	assert.Zero(t, f.backend.Hits(http.MethodPost, "/users"))
}

func TestCategoryCannotBeItsOwnParent(t *testing.T) {
	f := newFixture(t, admin)
	f.backend.OK(http.MethodGet, "/categories", []map[string]any{{"id": 3, "name": "Network"}})

	w := f.post("/categories/3", url.Values{"name": {"Network"}, "parent_id": {"3"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs := f.renderer.last(t).Data["Errors"].(map[string]string)
	assert.Equal(t, "A category cannot be its own parent", errs["parent_id"])
	assert.Zero(t, f.backend.Hits(http.MethodPut, "/categories/3"))
}

func TestReports(t *testing.T) {
	t.Run("defaults to the last 30 days", func(t *testing.T) {
		f := newFixture(t, admin)
		var query url.Values
		f.backend.Handle(http.MethodGet, "/reports/tickets", func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query()
			testutil.WriteEnvelope(w, http.StatusOK, map[string]any{"rows": []any{}}, "")
		})

		require.Equal(t, http.StatusOK, f.get("/reports").Code)
		assert.Equal(t, "2024-02-14", query.Get("from"))
		assert.Equal(t, "2024-03-15", query.Get("to"))
		assert.Equal(t, "-", f.renderer.last(t).Data["Summary"].(reportSummary).SLAMetPercent)
	})

	t.Run("an inverted range is refused", func(t *testing.T) {
		f := newFixture(t, admin)

		w := f.get("/reports?from=2024-03-10&to=2024-03-01")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, f.renderer.last(t).Data["Errors"], "to")
		assert.Zero(t, f.backend.Total())
	})

	t.Run("export streams a workbook", func(t *testing.T) {
		f := newFixture(t, admin)
		f.backend.OK(http.MethodGet, "/reports/tickets", map[string]any{
			"from": "2024-03-01", "to": "2024-03-15",
			"rows": []map[string]any{
				{"number": "T-1", "subject": "VPN down", "client": "Acme", "priority": "high", "status": "resolved",
					"created_at": "2024-03-02T09:00:00Z", "resolved_at": "2024-03-02T11:30:00Z", "resolution_hours": 2.5, "sla_met": true},
			},
		})

		w := f.get("/reports/export?from=2024-03-01&to=2024-03-15")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "attachment; filename=tickets_2024-03-01_2024-03-15.xlsx", w.Header().Get("Content-Disposition"))

		book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		defer book.Close()
		rows, err := book.GetRows("Tickets")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Number", rows[0][0])
		assert.Equal(t, []string{"T-1", "VPN down", "Acme", "", "high", "resolved", "", "2024-03-02 09:00", "2024-03-02 11:30", "2.5", "Yes"}, rows[1])
	})
}

func TestEmailSettingsTestSend(t *testing.T) {
	f := newFixture(t, admin)
	f.backend.OK(http.MethodPost, "/settings/email/test", nil)

	w := f.post("/settings/email/test", url.Values{"recipient": {"ops@example.com"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/settings/email?sent=1", w.Header().Get("Location"))
}

func TestLoginPageSendsSignedInUsersOn(t *testing.T) {
	f := newFixture(t, agent)

	w := f.get("/login")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	anon := newFixture(t, nil)
	require.Equal(t, http.StatusOK, anon.get("/login").Code)
	assert.Equal(t, "pages/login.html", anon.renderer.last(t).Name)
}

func TestBitLocker(t *testing.T) {
	f := newFixture(t, agent)
	f.backend.OK(http.MethodGet, "/bitlocker/PC-1", map[string]any{
		"asset_id": "PC-1",
		"volumes": []map[string]any{
			{"mount_point": "C:", "protection_status": 1, "encryption_percentage": 100},
			{"mount_point": "D:", "protection_status": "Off", "encryption_percentage": 37.5},
		},
	})

	require.Equal(t, http.StatusOK, f.get("/assets/PC-1/bitlocker").Code)
	page := f.renderer.last(t)
	require.Equal(t, "pages/assets/bitlocker.html", page.Name)
	assert.NotNil(t, page.Data["Volumes"])
}
