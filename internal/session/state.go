// Package session holds the signed-in identity of a browser: the user, the
// backend tokens, and where to send the browser once it signs in.
package session

import (
	"time"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

// State is what a request sees of its session. Loading is set while a
// restore is still in flight and the caller chose not to wait for it.
type State struct {
	User    *models.User
	Tokens  models.Tokens
	Loading bool
}

// IsAuthenticated is derived, never stored: a user with a usable access token,
// or an expired one that can still be refreshed.
func (s State) IsAuthenticated() bool {
	if s.Loading || s.User == nil || s.Tokens.AccessToken == "" {
		return false
	}
	return !s.Tokens.Expired(time.Now()) || s.Tokens.RefreshToken != ""
}

// Anonymous reports a settled state with no signed-in user.
func (s State) Anonymous() bool {
	return !s.Loading && !s.IsAuthenticated()
}

// Role returns the user's role, or "" when signed out.
func (s State) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Record is the persisted form of a session. An anonymous record carries only
// ReturnTo.
type Record struct {
	ID        string        `json:"id"`
	User      *models.User  `json:"user,omitempty"`
	Tokens    models.Tokens `json:"tokens"`
	ReturnTo  string        `json:"return_to,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// State projects the record onto the request view.
func (r *Record) State() State {
	if r == nil || r.User == nil {
		return State{}
	}
	return State{User: r.User, Tokens: r.Tokens}
}
