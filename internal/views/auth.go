package views

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helpdesk-io/helpdesk-web/internal/middleware"
	"github.com/helpdesk-io/helpdesk-web/internal/session"
)

// LoginPage shows the sign-in form. A signed-in user goes straight on.
func (h *Handlers) LoginPage(c *gin.Context) {
	if middleware.CurrentState(c).IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, h.DefaultView())
		return
	}
	h.render(c, http.StatusOK, "pages/login.html", gin.H{"Title": "Sign in"})
}

// Login signs the user in and sends them to where they were headed. A
// failure shows one general message and leaves the session as it was.
func (h *Handlers) Login(c *gin.Context) {
	creds := session.Credentials{
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		RemoteIP: c.ClientIP(),
	}

	result := h.Sessions.Login(c.Request.Context(), middleware.SessionID(c), creds)
	if !result.OK {
		status := http.StatusOK
		if len(result.Fields) > 0 {
			status = http.StatusUnprocessableEntity
		}
		h.render(c, status, "pages/login.html", gin.H{
			"Title":   "Sign in",
			"Email":   creds.Email,
			"Message": result.Message,
			"Errors":  result.Fields,
		})
		return
	}

	middleware.SetSessionCookie(c, h.Session, result.SessionID)
	c.Redirect(http.StatusSeeOther, middleware.SafeReturnPath(result.ReturnTo, h.DefaultView()))
}

// Logout always succeeds, whatever state the session was in.
func (h *Handlers) Logout(c *gin.Context) {
	h.Sessions.Logout(c.Request.Context(), middleware.SessionID(c))
	middleware.ClearSessionCookie(c, h.Session)
	c.Redirect(http.StatusSeeOther, "/login")
}
