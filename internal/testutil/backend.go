// Package testutil provides a scripted stand-in for the helpdesk REST backend.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/helpdesk-io/helpdesk-web/internal/apiclient"
)

// FakeBackend answers registered "METHOD /path" routes with envelope JSON and
// counts every request it sees.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	hits     map[string]int
	total    int
	lastAuth string
}

// NewFakeBackend starts a backend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		handlers: make(map[string]http.HandlerFunc),
		hits:     make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.hits[key]++
	f.total++
	f.lastAuth = r.Header.Get("Authorization")
	h := f.handlers[key]
	f.mu.Unlock()

	if h == nil {
		WriteEnvelope(w, http.StatusNotFound, nil, "not found")
		return
	}
	h(w, r)
}

// Handle registers h for method and exact path.
func (f *FakeBackend) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	f.handlers[method+" "+path] = h
	f.mu.Unlock()
}

// OK answers with a success envelope around data.
func (f *FakeBackend) OK(method, path string, data any) {
	f.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, http.StatusOK, data, "")
	})
}

// Fail answers with status and an error envelope.
func (f *FakeBackend) Fail(method, path string, status int, message string) {
	f.Handle(method, path, func(w http.ResponseWriter, _ *http.Request) {
		WriteEnvelope(w, status, nil, message)
	})
}

func (f *FakeBackend) Hits(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

// Total counts every request received, matched or not.
func (f *FakeBackend) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

// LastAuth is the Authorization header of the most recent request.
func (f *FakeBackend) LastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

// Client returns an API client pointed at the fake.
func (f *FakeBackend) Client() *apiclient.Client {
	return apiclient.New(apiclient.Config{BaseURL: f.URL, Timeout: 5 * time.Second})
}

// WriteEnvelope writes {success, data} for 2xx statuses and {success:false,
// error} otherwise.
func WriteEnvelope(w http.ResponseWriter, status int, data any, message string) {
	body := map[string]any{"success": status < 300}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["error"] = message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// AccessToken mints an HS256 token expiring at exp. Only the claims matter to
// the frontend; the key is throwaway.
func AccessToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
	})
	signed, err := tok.SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// LoginPayload is a /auth/login success body for user.
func LoginPayload(access, refresh string, expiresIn int64, user map[string]any) map[string]any {
	return map[string]any{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    expiresIn,
	}
}
