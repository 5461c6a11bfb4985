package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ProcessingLock serializes pipeline runs per standup. Two concurrent
// processing calls for the same standup would race to create two transcript
// archives; the SetNX guard turns the race into an explicit "already in
// progress" rejection instead of a unique-constraint failure.
type ProcessingLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProcessingLock creates a lock manager with the given lease duration
func NewProcessingLock(client *redis.Client, ttl time.Duration) *ProcessingLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProcessingLock{client: client, ttl: ttl}
}

// Acquire claims the processing lock for a standup. Returns false when
// another run already holds it. The TTL bounds the lease so a crashed run
// cannot wedge the standup forever.
func (l *ProcessingLock) Acquire(ctx context.Context, standupID uuid.UUID) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(standupID), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire processing lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock. A missing key is not an error; the TTL may have
// already reclaimed it.
func (l *ProcessingLock) Release(ctx context.Context, standupID uuid.UUID) error {
	if err := l.client.Del(ctx, l.key(standupID)).Err(); err != nil {
		return fmt.Errorf("failed to release processing lock: %w", err)
	}
	return nil
}

func (l *ProcessingLock) key(standupID uuid.UUID) string {
	return "standup:processing:" + standupID.String()
}
