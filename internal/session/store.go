package session

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps infrastructure failures (connection refused,
// timeouts) so callers can distinguish them from a plain miss.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the cache backing all session phases. Implementations must
// treat the record as opaque; keys are the opaque ids carried in the
// session cookie.
//
// Get returns (nil, nil) when the key is absent or expired.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Set(ctx context.Context, id string, rec *Record, ttl time.Duration) error
	Drop(ctx context.Context, id string) error
}
