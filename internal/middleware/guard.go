package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helpdesk-io/helpdesk-web/internal/auth"
	"github.com/helpdesk-io/helpdesk-web/internal/session"
)

// Verdict is a capability's answer for one request.
type Verdict int

const (
	Allow Verdict = iota
	Unauthenticated
	Forbidden
	Pending
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Pending:
		return "pending"
	}
	return "unknown"
}

// Capability decides whether a session may see a page.
type Capability interface {
	Allow(state session.State) Verdict
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(state session.State) Verdict

func (f CapabilityFunc) Allow(state session.State) Verdict { return f(state) }

func signedIn(state session.State) Verdict {
	switch {
	case state.Loading:
		return Pending
	case !state.IsAuthenticated():
		return Unauthenticated
	}
	return Allow
}

// Authenticated admits any signed-in user.
func Authenticated() Capability {
	return CapabilityFunc(signedIn)
}

// Roles admits signed-in users holding one of roles.
func Roles(roles ...string) Capability {
	return CapabilityFunc(func(state session.State) Verdict {
		if v := signedIn(state); v != Allow {
			return v
		}
		if !state.User.HasRole(roles...) {
			return Forbidden
		}
		return Allow
	})
}

// Permission admits signed-in users whose role grants perm.
func Permission(rbac *auth.RBAC, perm auth.Permission) Capability {
	return CapabilityFunc(func(state session.State) Verdict {
		if v := signedIn(state); v != Allow {
			return v
		}
		if !rbac.HasPermission(state.Role(), perm) {
			return Forbidden
		}
		return Allow
	})
}

// All admits only what every capability admits; the first refusal wins.
func All(caps ...Capability) Capability {
	return CapabilityFunc(func(state session.State) Verdict {
		for _, c := range caps {
			if v := c.Allow(state); v != Allow {
				return v
			}
		}
		return signedIn(state)
	})
}

// Renderer renders a named page template.
type Renderer interface {
	HTML(c *gin.Context, code int, name string, data interface{})
}

// GuardObserver counts redirects to the login page.
type GuardObserver interface {
	GuardRedirect()
}

// GuardOptions wires a Guards.
type GuardOptions struct {
	Manager   *session.Manager
	Session   SessionConfig
	RBAC      *auth.RBAC
	Renderer  Renderer
	Observer  GuardObserver
	Logger    *zap.Logger
	LoginPath string
}

// Guards builds route guards sharing one session manager.
type Guards struct {
	opts GuardOptions
}

func NewGuards(opts GuardOptions) *Guards {
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.RBAC == nil {
		opts.RBAC = auth.NewRBAC()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Guards{opts: opts}
}

// Guard wraps a subtree of pages with capability. A session that is still
// restoring gets a self-refreshing loading page instead of a redirect.
func (g *Guards) Guard(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch capability.Allow(CurrentState(c)) {
		case Allow:
			c.Next()
		case Pending:
			g.pending(c)
		case Forbidden:
			g.forbidden(c)
		default:
			g.Unauthenticated(c)
		}
	}
}

func (g *Guards) RequireAuth() gin.HandlerFunc {
	return g.Guard(Authenticated())
}

func (g *Guards) RequireRole(roles ...string) gin.HandlerFunc {
	return g.Guard(Roles(roles...))
}

func (g *Guards) RequirePermission(perm auth.Permission) gin.HandlerFunc {
	return g.Guard(Permission(g.opts.RBAC, perm))
}

// Unauthenticated sends the browser to the login page, remembering where it
// was going. API callers get a bare 401.
func (g *Guards) Unauthenticated(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Authentication required",
		})
		return
	}

	returnTo := c.Request.URL.RequestURI()
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		returnTo = formReturnPath(c.Request)
	}

	current := SessionID(c)
	id, err := g.opts.Manager.SetReturnTo(c.Request.Context(), current, returnTo)
	if err != nil {
		g.opts.Logger.Warn("failed to remember return path", zap.Error(err))
	} else if id != current {
		SetSessionCookie(c, g.opts.Session, id)
	}

	if g.opts.Observer != nil {
		g.opts.Observer.GuardRedirect()
	}
	c.Redirect(http.StatusSeeOther, g.opts.LoginPath)
	c.Abort()
}

func (g *Guards) pending(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Retry-After", "1")
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "Session is loading",
		})
		return
	}
	c.Header("Refresh", "1")
	g.opts.Renderer.HTML(c, http.StatusOK, "pages/loading.html", gin.H{"Title": "Loading"})
	c.Abort()
}

func (g *Guards) forbidden(c *gin.Context) {
	if isAPIRequest(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Insufficient permissions",
		})
		return
	}
	g.opts.Renderer.HTML(c, http.StatusForbidden, "pages/error.html", gin.H{
		"Title":   "Access denied",
		"Message": "You do not have permission to view this page.",
	})
	c.Abort()
}
