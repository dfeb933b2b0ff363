// Package template renders the helpdesk pages with pongo2. Templates are
// compiled into the binary; a template directory on disk can be used
// instead while developing, with edits picked up as they are saved.
package template

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-web/internal/auth"
	"github.com/helpdesk-io/helpdesk-web/internal/middleware"
	"github.com/helpdesk-io/helpdesk-web/internal/version"
)

//go:embed templates
var embedded embed.FS

// Options configures a Renderer.
type Options struct {
	// Dir, when set, loads templates from disk instead of the binary.
	Dir     string
	AppName string
	RBAC    *auth.RBAC
	Logger  *zap.Logger
}

// Renderer is a gin-friendly pongo2 renderer. Compiled templates are cached
// until the watcher (if any) sees a change.
type Renderer struct {
	set     *pongo2.TemplateSet
	rbac    *auth.RBAC
	log     *zap.Logger
	appName string
	dir     string
	watcher io.Closer
}

// New creates a renderer over the embedded templates, or over opts.Dir.
func New(opts Options) (*Renderer, error) {
	registerFilters()

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RBAC == nil {
		opts.RBAC = auth.NewRBAC()
	}
	if opts.AppName == "" {
		opts.AppName = "Helpdesk"
	}

	var fsys fs.FS
	if opts.Dir != "" {
		if _, err := os.Stat(opts.Dir); err != nil {
			return nil, fmt.Errorf("template dir: %w", err)
		}
		fsys = os.DirFS(opts.Dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	return &Renderer{
		set:     pongo2.NewSet("helpdesk", fsLoader{fsys: fsys}),
		rbac:    opts.RBAC,
		log:     opts.Logger,
		appName: opts.AppName,
		dir:     opts.Dir,
	}, nil
}

// Context builds the template context for a request: the shell globals
// followed by data, which wins on conflicts.
func (r *Renderer) Context(c *gin.Context, data interface{}) pongo2.Context {
	state := middleware.CurrentState(c)
	ctx := pongo2.Context{
		"AppName":     r.appName,
		"Version":     version.Version,
		"Lang":        middleware.GetLanguage(c),
		"CurrentPath": c.Request.URL.Path,
		"RequestID":   middleware.GetRequestID(c),
		"Permissions": map[string]bool{},
	}
	if state.IsAuthenticated() {
		ctx["CurrentUser"] = state.User
		ctx["IsAdmin"] = state.User.IsAdmin()
		ctx["Permissions"] = r.rbac.Permissions(state.Role())
	}
	perms := ctx["Permissions"].(map[string]bool)
	ctx["can"] = func(perm string) bool { return perms[perm] }

	switch v := data.(type) {
	case nil:
	case pongo2.Context:
		ctx = ctx.Update(v)
	case gin.H:
		ctx = ctx.Update(pongo2.Context(v))
	case map[string]interface{}:
		ctx = ctx.Update(v)
	default:
		ctx["Data"] = data
	}
	return ctx
}

// Render executes the named template into w.
func (r *Renderer) Render(w io.Writer, name string, ctx pongo2.Context) error {
	tmpl, err := r.set.FromCache(name)
	if err != nil {
		return fmt.Errorf("load template %s: %w", name, err)
	}
	return tmpl.ExecuteWriter(ctx, w)
}

// HTML renders a page. The page is fully rendered before anything is
// written, so a template error still produces a clean 500.
func (r *Renderer) HTML(c *gin.Context, code int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, r.Context(c, data)); err != nil {
		r.log.Error("template render failed",
			zap.String("template", name),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("Template error"))
		return
	}
	c.Data(code, "text/html; charset=utf-8", buf.Bytes())
}

// Close stops the template watcher, if one is running.
func (r *Renderer) Close() error {
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}
