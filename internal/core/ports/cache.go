package ports

import (
	"context"
	"time"
)

// TokenDenylist records revoked session token ids until they expire.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SubmissionGuard reports whether an idempotency key is seen for the first time.
// Release frees a claimed key whose submission stored nothing, so a retry
// with the same key runs again.
type SubmissionGuard interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
