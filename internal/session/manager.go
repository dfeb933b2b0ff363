package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/helpdesk-io/helpdesk-web/internal/apiclient"
	"github.com/helpdesk-io/helpdesk-web/internal/auth"
	"github.com/helpdesk-io/helpdesk-web/internal/models"
	"github.com/helpdesk-io/helpdesk-web/internal/validation"
)

const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgUnreachable        = "Unable to reach the server. Please try again."
	MsgUnavailable        = "Sign-in is unavailable right now. Please try again."
	MsgCheckFields        = "Please correct the highlighted fields."
)

// AuthBackend is the slice of the backend client the manager needs.
// *apiclient.AuthService satisfies it.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*apiclient.TokenResponse, error)
	Me(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context, refreshToken string) error
}

// LoginObserver counts login outcomes.
type LoginObserver interface {
	LoginAttempt(result string)
}

// Credentials is the login form. RemoteIP feeds the rate limiter and is never
// bound from the form.
type Credentials struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
	RemoteIP string `form:"-"`
}

// LoginResult is the only thing Login reports. On failure Message is a single
// general sentence and Fields holds per-field problems, if any.
type LoginResult struct {
	OK        bool
	SessionID string
	ReturnTo  string
	Message   string
	Fields    map[string]string
}

// Options configures a Manager.
type Options struct {
	TTL       time.Duration
	Limiter   *auth.LoginRateLimiter
	Validator *validation.Validator
	Observer  LoginObserver
	Logger    *zap.Logger
}

// Manager owns every session in the process. It is built once at startup and
// handed to the middleware and views.
type Manager struct {
	store     Store
	backend   AuthBackend
	ttl       time.Duration
	limiter   *auth.LoginRateLimiter
	validator *validation.Validator
	observer  LoginObserver
	log       *zap.Logger
	restores  singleflight.Group
	now       func() time.Time
}

func NewManager(store Store, backend AuthBackend, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		store:     store,
		backend:   backend,
		ttl:       opts.TTL,
		limiter:   opts.Limiter,
		validator: opts.Validator,
		observer:  opts.Observer,
		log:       opts.Logger,
		now:       time.Now,
	}
}

// Restore rebuilds the state for id from the store, refreshing an expired
// access token when a refresh token exists. Any failure yields the anonymous
// state. Concurrent restores of one id share a single backend refresh.
func (m *Manager) Restore(ctx context.Context, id string) State {
	if id == "" {
		return State{}
	}
	v, _, _ := m.restores.Do(id, func() (interface{}, error) {
		return m.restore(ctx, id), nil
	})
	return v.(State)
}

// Begin is Restore with a deadline. If the restore is not done after wait it
// returns a Loading state and lets the restore finish in the background.
func (m *Manager) Begin(ctx context.Context, id string, wait time.Duration) State {
	if id == "" {
		return State{}
	}
	if wait <= 0 {
		return m.Restore(ctx, id)
	}

	bg := context.WithoutCancel(ctx)
	ch := m.restores.DoChan(id, func() (interface{}, error) {
		return m.restore(bg, id), nil
	})

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case res := <-ch:
		return res.Val.(State)
	case <-timer.C:
		return State{Loading: true}
	case <-ctx.Done():
		return State{Loading: true}
	}
}

func (m *Manager) restore(ctx context.Context, id string) State {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.log.Warn("session lookup failed", zap.String("session", shortID(id)), zap.Error(err))
		}
		return State{}
	}
	if rec.User == nil || rec.Tokens.AccessToken == "" {
		return State{}
	}

	now := m.now()
	if !rec.Tokens.Expired(now) {
		return rec.State()
	}
	if rec.Tokens.RefreshToken == "" {
		m.forget(ctx, rec)
		return State{}
	}

	resp, err := m.backend.Refresh(ctx, rec.Tokens.RefreshToken)
	if err != nil {
		if apiclient.IsNetworkError(err) {
			m.log.Warn("token refresh unreachable", zap.String("session", shortID(id)), zap.Error(err))
			return State{}
		}
		m.log.Info("token refresh rejected", zap.String("session", shortID(id)), zap.Error(err))
		if derr := m.store.Delete(ctx, id); derr != nil {
			m.log.Warn("failed to delete session", zap.Error(derr))
		}
		return State{}
	}

	refresh := resp.RefreshToken
	if refresh == "" {
		refresh = rec.Tokens.RefreshToken
	}
	rec.Tokens = newTokens(resp.AccessToken, refresh, resp.ExpiresIn, now)
	rec.UpdatedAt = now
	// A role changed since sign-in takes effect here. Failing to read the
	// profile keeps the one already stored.
	if u, err := m.backend.Me(apiclient.WithAccessToken(ctx, resp.AccessToken)); err == nil && u.ID == rec.User.ID {
		rec.User = u
	} else if err != nil {
		m.log.Debug("profile reload failed", zap.String("session", shortID(id)), zap.Error(err))
	}
	if err := m.store.Save(ctx, rec, m.ttl); err != nil {
		m.log.Warn("failed to persist refreshed tokens", zap.Error(err))
	}
	return rec.State()
}

// forget drops the credentials from a record but keeps its return path.
func (m *Manager) forget(ctx context.Context, rec *Record) {
	rec.User = nil
	rec.Tokens = models.Tokens{}
	rec.UpdatedAt = m.now()
	if err := m.store.Save(ctx, rec, m.ttl); err != nil {
		m.log.Warn("failed to clear expired session", zap.Error(err))
	}
}

// Login validates credentials, asks the backend, and on success stores a new
// session under a fresh id. The previous record, if any, is replaced and its
// return path carried into the result. Failures never touch the store.
func (m *Manager) Login(ctx context.Context, id string, creds Credentials) LoginResult {
	if err := m.validator.Struct(creds); err != nil {
		m.observe("invalid")
		return LoginResult{Message: MsgCheckFields, Fields: validation.FieldErrors(err)}
	}

	if m.limiter != nil {
		if blocked, wait := m.limiter.IsBlocked(creds.RemoteIP, creds.Email); blocked {
			m.observe("blocked")
			return LoginResult{Message: fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", int(wait.Seconds())+1)}
		}
	}

	resp, err := m.backend.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return m.loginFailed(creds, err)
	}
	if m.limiter != nil {
		m.limiter.RecordSuccess(creds.RemoteIP, creds.Email)
	}

	now := m.now()
	returnTo := ""
	if id != "" {
		if old, err := m.store.Get(ctx, id); err == nil {
			returnTo = old.ReturnTo
		}
		if err := m.store.Delete(ctx, id); err != nil {
			m.log.Warn("failed to rotate session", zap.Error(err))
		}
	}

	user := resp.User
	rec := &Record{
		ID:        uuid.New().String(),
		User:      &user,
		Tokens:    newTokens(resp.AccessToken, resp.RefreshToken, resp.ExpiresIn, now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, rec, m.ttl); err != nil {
		m.log.Error("failed to store session", zap.Error(err))
		m.observe("error")
		return LoginResult{Message: MsgUnavailable}
	}

	m.observe("success")
	m.log.Info("user signed in", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return LoginResult{OK: true, SessionID: rec.ID, ReturnTo: returnTo}
}

func (m *Manager) loginFailed(creds Credentials, err error) LoginResult {
	var apiErr *apiclient.APIError
	switch {
	case apiclient.IsNetworkError(err):
		m.observe("unreachable")
		m.log.Warn("login backend unreachable", zap.Error(err))
		return LoginResult{Message: MsgUnreachable}
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 500:
		m.observe("error")
		m.log.Warn("login backend error", zap.Error(err))
		return LoginResult{Message: MsgUnavailable}
	}

	if m.limiter != nil {
		m.limiter.RecordFailure(creds.RemoteIP, creds.Email)
	}
	m.observe("failure")
	return LoginResult{Message: MsgInvalidCredentials}
}

// Logout forgets the session. It is idempotent and succeeds for unknown ids;
// the backend is told on a best-effort basis.
func (m *Manager) Logout(ctx context.Context, id string) {
	if id == "" {
		return
	}
	rec, err := m.store.Get(ctx, id)
	if err := m.store.Delete(ctx, id); err != nil {
		m.log.Warn("failed to delete session", zap.Error(err))
	}
	if err != nil || rec.Tokens.AccessToken == "" {
		return
	}

	bctx := apiclient.WithAccessToken(ctx, rec.Tokens.AccessToken)
	if err := m.backend.Logout(bctx, rec.Tokens.RefreshToken); err != nil {
		m.log.Debug("backend logout failed", zap.Error(err))
	}
}

// SetReturnTo remembers where the browser was headed. It creates an anonymous
// record when id is unknown and returns the id to put in the cookie.
func (m *Manager) SetReturnTo(ctx context.Context, id, path string) (string, error) {
	now := m.now()
	rec, err := m.store.Get(ctx, id)
	if err != nil || id == "" {
		if err != nil && !errors.Is(err, ErrNotFound) {
			m.log.Warn("session lookup failed", zap.Error(err))
		}
		rec = &Record{ID: uuid.New().String(), CreatedAt: now}
	}
	rec.ReturnTo = path
	rec.UpdatedAt = now
	if err := m.store.Save(ctx, rec, m.ttl); err != nil {
		return "", fmt.Errorf("save return path: %w", err)
	}
	return rec.ID, nil
}

// TTL is the lifetime of a stored session, used for the cookie max-age.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) observe(result string) {
	if m.observer != nil {
		m.observer.LoginAttempt(result)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
