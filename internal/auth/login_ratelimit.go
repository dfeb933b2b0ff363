package auth

import (
	"strings"
	"sync"
	"time"
)

// LoginRateLimiter implements fail2ban-style rate limiting for login attempts.
// It tracks failed attempts by IP and email, applying exponential backoff.
type LoginRateLimiter struct {
	mu       sync.RWMutex
	attempts map[string]*attemptRecord
	now      func() time.Time

	maxAttempts int
	window      time.Duration
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

type attemptRecord struct {
	failures  int
	lastFail  time.Time
	blockedAt time.Time
}

// LimiterConfig mirrors the auth section of the configuration.
type LimiterConfig struct {
	MaxAttempts int
	Window      time.Duration
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// NewLoginRateLimiter creates a limiter. Zero values fall back to 5 attempts
// in 5 minutes with a 2s..60s backoff.
func NewLoginRateLimiter(cfg LimiterConfig) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts: make(map[string]*attemptRecord),
		now:      time.Now,
	}
	rl.apply(cfg)
	return rl
}

// Configure replaces the limits. Failures already recorded are kept and
// judged against the new limits.
func (rl *LoginRateLimiter) Configure(cfg LimiterConfig) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.apply(cfg)
}

func (rl *LoginRateLimiter) apply(cfg LimiterConfig) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 2 * time.Second
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = 30 * cfg.BaseBackoff
	}
	rl.maxAttempts = cfg.MaxAttempts
	rl.window = cfg.Window
	rl.baseBackoff = cfg.BaseBackoff
	rl.maxBackoff = cfg.MaxBackoff
}

func (rl *LoginRateLimiter) key(ip, email string) string {
	return ip + ":" + strings.ToLower(strings.TrimSpace(email))
}

// IsBlocked checks if an IP+email combination is currently blocked
func (rl *LoginRateLimiter) IsBlocked(ip, email string) (bool, time.Duration) {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	rec, exists := rl.attempts[rl.key(ip, email)]
	if !exists || rec.blockedAt.IsZero() {
		return false, 0
	}

	unblockTime := rec.blockedAt.Add(rl.calculateBackoff(rec.failures))
	now := rl.now()
	if now.After(unblockTime) {
		return false, 0
	}
	return true, unblockTime.Sub(now)
}

// RecordFailure records a failed login attempt
func (rl *LoginRateLimiter) RecordFailure(ip, email string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	k := rl.key(ip, email)
	rec, exists := rl.attempts[k]
	if !exists {
		rec = &attemptRecord{}
		rl.attempts[k] = rec
	}

	now := rl.now()
	if !rec.lastFail.IsZero() && now.Sub(rec.lastFail) > rl.window {
		rec.failures = 0
		rec.blockedAt = time.Time{}
	}

	rec.failures++
	rec.lastFail = now

	if rec.failures >= rl.maxAttempts {
		rec.blockedAt = now
	}
}

// RecordSuccess clears the failure record for successful login
func (rl *LoginRateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, rl.key(ip, email))
}

// calculateBackoff returns base * 2^(failures - maxAttempts), capped.
func (rl *LoginRateLimiter) calculateBackoff(failures int) time.Duration {
	if failures <= rl.maxAttempts {
		return rl.baseBackoff
	}
	shift := failures - rl.maxAttempts
	if shift > 30 {
		return rl.maxBackoff
	}
	backoff := rl.baseBackoff * time.Duration(1<<shift)
	if backoff > rl.maxBackoff {
		return rl.maxBackoff
	}
	return backoff
}

// Sweep removes records idle for more than two windows. It is scheduled on
// the server's cron.
func (rl *LoginRateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	now := rl.now()
	for k, rec := range rl.attempts {
		if now.Sub(rec.lastFail) > 2*rl.window {
			delete(rl.attempts, k)
			removed++
		}
	}
	return removed
}
