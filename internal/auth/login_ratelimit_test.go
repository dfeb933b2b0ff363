package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(maxAttempts int) (*LoginRateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
	rl := NewLoginRateLimiter(LimiterConfig{
		MaxAttempts: maxAttempts,
		Window:      time.Minute,
		BaseBackoff: time.Second,
		MaxBackoff:  10 * time.Second,
	})
	rl.now = clock.Now
	return rl, clock
}

func TestLoginRateLimiter_Basic(t *testing.T) {
	rl, _ := newTestLimiter(3)
	ip, email := "192.168.1.1", "agent@example.com"

	blocked, _ := rl.IsBlocked(ip, email)
	assert.False(t, blocked, "should not be blocked initially")

	rl.RecordFailure(ip, email)
	rl.RecordFailure(ip, email)
	blocked, _ = rl.IsBlocked(ip, email)
	assert.False(t, blocked, "should not be blocked below the threshold")

	rl.RecordFailure(ip, email)
	blocked, remaining := rl.IsBlocked(ip, email)
	assert.True(t, blocked)
	assert.Equal(t, time.Second, remaining)
}

func TestLoginRateLimiter_KeysByIPAndEmail(t *testing.T) {
	rl, _ := newTestLimiter(2)

	rl.RecordFailure("10.0.0.1", "user1@example.com")
	rl.RecordFailure("10.0.0.1", "USER1@example.com ")

	blocked, _ := rl.IsBlocked("10.0.0.1", "user1@example.com")
	assert.True(t, blocked, "email is case and space insensitive")

	blocked, _ = rl.IsBlocked("10.0.0.1", "user2@example.com")
	assert.False(t, blocked)
	blocked, _ = rl.IsBlocked("10.0.0.2", "user1@example.com")
	assert.False(t, blocked)
}

func TestLoginRateLimiter_BackoffExpires(t *testing.T) {
	rl, clock := newTestLimiter(2)
	ip, email := "10.0.0.1", "a@example.com"

	rl.RecordFailure(ip, email)
	rl.RecordFailure(ip, email)
	clock.Advance(1500 * time.Millisecond)

	blocked, _ := rl.IsBlocked(ip, email)
	assert.False(t, blocked)
}

func TestLoginRateLimiter_ExponentialBackoff(t *testing.T) {
	rl, _ := newTestLimiter(2)

	assert.Equal(t, time.Second, rl.calculateBackoff(2))
	assert.Equal(t, 2*time.Second, rl.calculateBackoff(3))
	assert.Equal(t, 4*time.Second, rl.calculateBackoff(4))
	assert.Equal(t, 10*time.Second, rl.calculateBackoff(10), "capped at max backoff")
	assert.Equal(t, 10*time.Second, rl.calculateBackoff(100))
}

func TestLoginRateLimiter_SuccessClears(t *testing.T) {
	rl, _ := newTestLimiter(2)
	ip, email := "10.0.0.1", "a@example.com"

	rl.RecordFailure(ip, email)
	rl.RecordFailure(ip, email)
	rl.RecordSuccess(ip, email)

	blocked, _ := rl.IsBlocked(ip, email)
	assert.False(t, blocked)
}

func TestLoginRateLimiter_WindowResets(t *testing.T) {
	rl, clock := newTestLimiter(2)
	ip, email := "10.0.0.1", "a@example.com"

	rl.RecordFailure(ip, email)
	clock.Advance(2 * time.Minute)
	rl.RecordFailure(ip, email)

	blocked, _ := rl.IsBlocked(ip, email)
	assert.False(t, blocked, "failures outside the window do not accumulate")
}

func TestLoginRateLimiter_Sweep(t *testing.T) {
	rl, clock := newTestLimiter(5)
	rl.RecordFailure("10.0.0.1", "a@example.com")
	rl.RecordFailure("10.0.0.2", "b@example.com")

	assert.Equal(t, 0, rl.Sweep())
	clock.Advance(3 * time.Minute)
	assert.Equal(t, 2, rl.Sweep())
	assert.Equal(t, 0, rl.Sweep(), "nothing left to remove")
}

func TestLoginRateLimiter_Configure(t *testing.T) {
	rl, _ := newTestLimiter(5)
	for i := 0; i < 3; i++ {
		rl.RecordFailure("10.0.0.1", "a@example.com")
	}
	blocked, _ := rl.IsBlocked("10.0.0.1", "a@example.com")
	assert.False(t, blocked)

	rl.Configure(LimiterConfig{MaxAttempts: 3, Window: time.Minute, BaseBackoff: time.Second, MaxBackoff: 10 * time.Second})
	rl.RecordFailure("10.0.0.1", "a@example.com")

	blocked, wait := rl.IsBlocked("10.0.0.1", "a@example.com")
	assert.True(t, blocked, "the lower limit applies to the next failure")
	assert.Equal(t, 2*time.Second, wait)
}
