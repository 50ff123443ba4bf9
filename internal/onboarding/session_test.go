package onboarding

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func sampleSession() *Session {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Session{
		ID:        "sess-1",
		Flow:      Flow{Step: StepFocus, Form: sampleForm()},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	sess := sampleSession()
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	// Stored copies are isolated from caller mutation.
	got.Flow.Form.Focus[0] = FocusCategories
	again, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, FocusProducts, again.Flow.Form.Focus[0])

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, sampleSession()))
	other := sampleSession()
	other.ID = "sess-2"
	require.NoError(t, store.Save(ctx, other))

	now = now.Add(2 * time.Minute)
	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 0, store.Sweep())
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, 30*time.Minute)

	sess := sampleSession()
	require.NoError(t, store.Save(ctx, sess))
	assert.True(t, mr.Exists("onboarding:session:sess-1"))
	assert.Equal(t, 30*time.Minute, mr.TTL("onboarding:session:sess-1"))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Flow, got.Flow)
	assert.True(t, sess.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)

	require.NoError(t, store.Save(ctx, sampleSession()))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)

	require.NoError(t, mr.Set("onboarding:session:bad", "{not json"))
	_, err := store.Get(ctx, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
