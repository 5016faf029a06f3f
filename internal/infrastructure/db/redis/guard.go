package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = 24 * time.Hour

// SubmissionGuard remembers Idempotency-Key values for a day.
// Key format: submit:<key>
type SubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSubmissionGuard(client *redis.Client) *SubmissionGuard {
	return &SubmissionGuard{client: client, ttl: guardTTL}
}

// FirstSeen atomically claims key and reports whether this call claimed it.
func (g *SubmissionGuard) FirstSeen(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submission guard: %w", err)
	}
	return ok, nil
}

func (g *SubmissionGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.key(key)).Err(); err != nil {
		return fmt.Errorf("submission guard release: %w", err)
	}
	return nil
}

func (g *SubmissionGuard) key(k string) string {
	return "submit:" + k
}
