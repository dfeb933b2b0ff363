package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Backend.BaseURL == "" {
		problems = append(problems, "backend.base_url is required")
	} else if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("backend.base_url %q is not an absolute URL", c.Backend.BaseURL))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}

	switch c.Session.Store {
	case "memory", "redis":
	default:
		problems = append(problems, fmt.Sprintf("session.store %q must be memory or redis", c.Session.Store))
	}
	if c.Session.CookieName == "" {
		problems = append(problems, "session.cookie_name is required")
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session.ttl must be positive")
	}

	if !strings.HasPrefix(c.App.DefaultView, "/") {
		problems = append(problems, "app.default_view must be an absolute path")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		problems = append(problems, fmt.Sprintf("logging.format %q must be json or console", c.Logging.Format))
	}

	start, errStart := time.Parse("15:04", c.Calendar.WorkdayStart)
	end, errEnd := time.Parse("15:04", c.Calendar.WorkdayEnd)
	switch {
	case errStart != nil || errEnd != nil:
		problems = append(problems, "calendar.workday_start/workday_end must be HH:MM")
	case !end.After(start):
		problems = append(problems, "calendar.workday_end must be after workday_start")
	}
	for _, h := range c.Calendar.Holidays {
		if _, err := time.Parse("2006-01-02", h); err != nil {
			problems = append(problems, fmt.Sprintf("calendar.holidays entry %q is not YYYY-MM-DD", h))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n%s", strings.Join(problems, "\n"))
	}
	return nil
}
