package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists session records in Redis with a per-entry TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "session:",
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Get fetches a record by id. Expired or corrupt entries are deleted and
// reported as a miss rather than an error: the caller must fail closed,
// not crash, on bad data.
func (r *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil || !rec.Valid() {
		_ = r.client.Del(ctx, r.key(id)).Err()
		return nil, nil
	}

	if rec.Expired(time.Now()) {
		_ = r.client.Del(ctx, r.key(id)).Err()
		return nil, nil
	}

	return &rec, nil
}

// Set writes a record under id with the given TTL. Redis evicts the key
// on TTL expiry; ExpiresAt on the record is the authoritative bound and
// is enforced on read as well.
func (r *RedisStore) Set(ctx context.Context, id string, rec *Record, ttl time.Duration) error {
	if id == "" {
		return fmt.Errorf("session: missing id")
	}
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := r.client.Set(ctx, r.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Drop removes a record. Deleting an absent key is not an error.
func (r *RedisStore) Drop(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
