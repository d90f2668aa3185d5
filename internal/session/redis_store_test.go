package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := NewAuthenticated(
		User{ID: "u1", Email: "u@example.com", Roles: []string{"admin"}},
		"tok", "rt", time.Now().Add(time.Hour), 4*time.Hour,
	)
	require.NoError(t, store.Set(ctx, "sess-1", rec, 4*time.Hour))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, KindAuthenticated, got.Kind)
	assert.Equal(t, "u1", got.Authenticated.User.ID)
	assert.Equal(t, []string{"admin"}, got.Authenticated.User.Roles)
	assert.Equal(t, "tok", got.Authenticated.Token)
}

func TestRedisStoreMiss(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "no-such-key")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreTTLEviction(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	rec := NewVisitor("v1", "agent", "10.0.0.1", time.Minute)
	require.NoError(t, store.Set(ctx, "vis-1", rec, time.Minute))

	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "vis-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreExpiredRecordTreatedAsAbsent(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	// Redis TTL outlives the record's own expiry: the record bound wins.
	rec := NewVisitor("v1", "agent", "10.0.0.1", time.Minute)
	rec.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, store.Set(ctx, "vis-1", rec, time.Hour))

	got, err := store.Get(ctx, "vis-1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("session:vis-1"), "expired record must be dropped")
}

func TestRedisStoreCorruptRecordTreatedAsAbsent(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set("session:bad-json", "{not json")
	mr.Set("session:bad-shape", `{"kind":"authenticated","expires_at":"2999-01-02T15:04:05Z"}`)

	for _, id := range []string{"bad-json", "bad-shape"} {
		got, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.False(t, mr.Exists("session:"+id))
	}
}

func TestRedisStoreSetValidation(t *testing.T) {
	store, _ := newTestStore(t)
	rec := NewVisitor("v1", "", "", time.Minute)

	assert.Error(t, store.Set(context.Background(), "", rec, time.Minute))
	assert.Error(t, store.Set(context.Background(), "id", rec, 0))
}

func TestRedisStoreDropIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := NewVisitor("v1", "", "", time.Minute)
	require.NoError(t, store.Set(ctx, "vis-1", rec, time.Minute))
	require.NoError(t, store.Drop(ctx, "vis-1"))
	require.NoError(t, store.Drop(ctx, "vis-1"))

	got, err := store.Get(ctx, "vis-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "any")
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	err = store.Set(context.Background(), "any", NewVisitor("v", "", "", time.Minute), time.Minute)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, store.Drop(context.Background(), "any"), ErrStoreUnavailable)
}
