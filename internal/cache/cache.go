package cache

import (
	"context"
	"time"
)

// TokenStore remembers revoked token ids until they would have expired anyway.
type TokenStore interface {
	// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// Consume revokes jti for ttl unless it is already revoked and reports
	// whether this call revoked it. A non-positive ttl consumes nothing.
	Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	// IsRevoked reports whether jti was revoked and has not yet expired.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}
