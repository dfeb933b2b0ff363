package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-io/helpdesk-web/internal/session"
)

const (
	stateKey     = "session_state"
	sessionIDKey = "session_id"
)

// SessionConfig describes the session cookie.
type SessionConfig struct {
	CookieName  string
	Secure      bool
	MaxAge      time.Duration
	RestoreWait time.Duration
	// CurrentWait, when set, is read on every request in place of
	// RestoreWait so a reloaded configuration applies immediately.
	CurrentWait func() time.Duration
}

func (cfg SessionConfig) restoreWait() time.Duration {
	if cfg.CurrentWait != nil {
		return cfg.CurrentWait()
	}
	return cfg.RestoreWait
}

// SessionLoader reads the session cookie and attaches the restored state to
// the request. It never rejects; guards decide what the state allows.
func SessionLoader(mgr *session.Manager, cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(cfg.CookieName)
		AttachState(c, id, mgr.Begin(c.Request.Context(), id, cfg.restoreWait()))
		c.Next()
	}
}

// AttachState records the session id and state on the request.
func AttachState(c *gin.Context, id string, state session.State) {
	c.Set(sessionIDKey, id)
	c.Set(stateKey, state)
	if user := state.User; user != nil && state.IsAuthenticated() {
		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
	}
}

// CurrentState returns the state attached by SessionLoader, or the anonymous
// state when none was attached.
func CurrentState(c *gin.Context) session.State {
	if v, ok := c.Get(stateKey); ok {
		if s, ok := v.(session.State); ok {
			return s
		}
	}
	return session.State{}
}

// SessionID returns the id from the session cookie (possibly "").
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// SetSessionCookie points the browser at session id and records it on the
// current request.
func SetSessionCookie(c *gin.Context, cfg SessionConfig, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, id, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
	c.Set(sessionIDKey, id)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cfg SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.Secure, true)
	c.Set(sessionIDKey, "")
	c.Set(stateKey, session.State{})
}

// isAPIRequest decides between a JSON status and an HTML redirect.
func isAPIRequest(c *gin.Context) bool {
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	if c.GetHeader("HX-Request") == "true" {
		return true
	}
	accept := c.GetHeader("Accept")
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return true
	}
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}
