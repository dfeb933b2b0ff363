package template

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-io/helpdesk-web/internal/middleware"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
	"github.com/helpdesk-io/helpdesk-web/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if user != nil {
		middleware.AttachState(c, "sid", session.State{
			User:   user,
			Tokens: models.Tokens{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour)},
		})
	}
	return c, w
}

func TestEveryPageParses(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	err = fs.WalkDir(embedded, "templates/pages", func(p string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}
		name := strings.TrimPrefix(p, "templates/")
		t.Run(name, func(t *testing.T) {
			c, _ := newTestContext(t, &models.User{ID: 1, Name: "Ada", Role: "Admin"})
			var buf bytes.Buffer
			assert.NoError(t, r.Render(&buf, name, r.Context(c, nil)))
		})
		return nil
	})
	require.NoError(t, err)
}

func TestHTML_ShellFollowsPermissions(t *testing.T) {
	r, err := New(Options{AppName: "Desk"})
	require.NoError(t, err)

	c, w := newTestContext(t, &models.User{ID: 1, Name: "Ada", Role: "Admin"})
	r.HTML(c, http.StatusOK, "pages/error.html", gin.H{"Title": "Hello", "Message": "World"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, `href="/users"`)
	assert.Contains(t, body, `href="/settings/sla"`)

	c, w = newTestContext(t, &models.User{ID: 2, Name: "Cy", Role: "Customer"})
	r.HTML(c, http.StatusOK, "pages/error.html", gin.H{"Title": "Hello"})
	body = w.Body.String()
	assert.Contains(t, body, `href="/tickets"`)
	assert.NotContains(t, body, `href="/users"`)
	assert.NotContains(t, body, `href="/clients"`)
}

func TestHTML_AnonymousHasNoShell(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	c, w := newTestContext(t, nil)
	r.HTML(c, http.StatusOK, "pages/login.html", gin.H{
		"Message": "Invalid email or password",
		"Email":   "a@b.c",
		"Errors":  map[string]string{"password": "This field is required"},
	})
	body := w.Body.String()
	assert.Contains(t, body, "Invalid email or password")
	assert.Contains(t, body, `value="a@b.c"`)
	assert.Contains(t, body, "This field is required")
	assert.NotContains(t, body, "Sign out")
}

func TestHTML_ErrorPanelHasRetry(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	c, w := newTestContext(t, &models.User{ID: 1, Name: "Ada", Role: "Agent"})
	r.HTML(c, http.StatusOK, "pages/dashboard.html", gin.H{
		"LoadError": "Unable to reach the server. Please try again.",
		"RetryURL":  "/dashboard",
	})
	body := w.Body.String()
	assert.Contains(t, body, "Unable to reach the server")
	assert.Contains(t, body, `<a href="/dashboard">Retry</a>`)
}

func TestHTML_MissingTemplate(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	c, w := newTestContext(t, nil)
	r.HTML(c, http.StatusOK, "pages/nope.html", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestFilters(t *testing.T) {
	registerFilters()
	when := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		tpl  string
		ctx  pongo2.Context
		want string
	}{
		{"localdate en", `{{ t|localdate:"en" }}`, pongo2.Context{"t": when}, "Mar 5, 2024"},
		{"localdate de", `{{ t|localdate:"de" }}`, pongo2.Context{"t": when}, "05.03.2024"},
		{"localdate nil pointer", `[{{ t|localdate:"en" }}]`, pongo2.Context{"t": (*time.Time)(nil)}, "[]"},
		{"localdate pointer", `{{ t|localdate:"en" }}`, pongo2.Context{"t": &when}, "Mar 5, 2024"},
		{"sla bucket", `{{ h|sla_bucket }}`, pongo2.Context{"h": 4}, "high"},
		{"sla tone", `{{ h|sla_tone }}`, pongo2.Context{"h": 100}, "muted"},
		{"number", `{{ n|number:"en" }}`, pongo2.Context{"n": 12345}, "12,345"},
		{"percent", `{{ p|percent }}`, pongo2.Context{"p": 42.5}, "42.5%"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl, err := pongo2.FromString(tc.tpl)
			require.NoError(t, err)
			out, err := tpl.Execute(tc.ctx)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestMarkdownFilterSanitizes(t *testing.T) {
	registerFilters()
	tpl, err := pongo2.FromString(`{{ body|markdown }}`)
	require.NoError(t, err)
	out, err := tpl.Execute(pongo2.Context{"body": "**bold** <script>alert(1)</script>"})
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestDiskTemplatesReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte("one"), 0o644))

	r, err := New(Options{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, r.Watch())
	defer r.Close()

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "page.html", pongo2.Context{}))
	assert.Equal(t, "one", buf.String())

	require.NoError(t, os.WriteFile(page, []byte("two"), 0o644))
	assert.Eventually(t, func() bool {
		buf.Reset()
		return r.Render(&buf, "page.html", pongo2.Context{}) == nil && buf.String() == "two"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNew_MissingDir(t *testing.T) {
	_, err := New(Options{Dir: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}
