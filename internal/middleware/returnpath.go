package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// actionSuffixes name POST-only sub-resources. The page showing their form is
// the parent path.
var actionSuffixes = []string{"/comments", "/test"}

// SafeReturnPath accepts only a local absolute path. Anything that could
// leave the site (scheme, host, "//", backslashes) or that points back at the
// login flow yields fallback.
func SafeReturnPath(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return fallback
	}
	if strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\\r\n\t") {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	switch u.Path {
	case "/login", "/logout":
		return fallback
	}
	return raw
}

// formReturnPath is where a form post turned away for lack of a session
// resumes after sign-in: the page the form was on when the Referer is from
// this site, otherwise the post target without its action suffix.
func formReturnPath(r *http.Request) string {
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host && ref.Path != "" {
		if p := SafeReturnPath(ref.RequestURI(), ""); p != "" {
			return p
		}
	}
	p := r.URL.Path
	for _, suffix := range actionSuffixes {
		if page := strings.TrimSuffix(p, suffix); page != p && page != "" {
			return page
		}
	}
	return p
}
