package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-io/helpdesk-web/internal/models"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	t.Run("missing id", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("round trip returns a copy", func(t *testing.T) {
		rec := &Record{ID: "a", User: &models.User{ID: 1, Role: "Agent"}, ReturnTo: "/tickets"}
		require.NoError(t, s.Save(ctx, rec, time.Minute))

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "/tickets", got.ReturnTo)

		got.ReturnTo = "/changed"
		again, _ := s.Get(ctx, "a")
		assert.Equal(t, "/tickets", again.ReturnTo)
	})

	t.Run("expiry and sweep", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, &Record{ID: "short"}, time.Second))
		assert.Equal(t, 2, s.Len())

		now = now.Add(2 * time.Second)
		_, err := s.Get(ctx, "short")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, s.Sweep())
		assert.Equal(t, 1, s.Len())
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		assert.NoError(t, s.Delete(ctx, "a"))
		assert.NoError(t, s.Delete(ctx, "a"))
		_, err := s.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects records without id", func(t *testing.T) {
		assert.Error(t, s.Save(ctx, &Record{}, time.Minute))
	})
}

func TestMemoryStoreSweeper(t *testing.T) {
	s := NewMemoryStore()
	assert.Error(t, s.StartSweeper("not a schedule", nil))

	require.NoError(t, s.StartSweeper("@every 1h", func(int) {}))
	assert.NoError(t, s.Close())
}

func TestRedisStoreEncoding(t *testing.T) {
	s := newRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	defer s.Close()
	assert.Equal(t, "helpdesk:session:abc", s.key("abc"))

	rec := &Record{
		ID:       "abc",
		User:     &models.User{ID: 3, Email: "a@example.com", Role: "Admin"},
		Tokens:   models.Tokens{AccessToken: "x", RefreshToken: "y"},
		ReturnTo: "/clients/42",
	}
	data, err := encodeRecord(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"return_to":"/clients/42"`)

	back, err := decodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, rec.User.Email, back.User.Email)
	assert.Equal(t, rec.Tokens, back.Tokens)

	_, err = encodeRecord(&Record{})
	assert.Error(t, err)
	_, err = decodeRecord([]byte("{"))
	assert.Error(t, err)
}

func TestRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisStore(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
