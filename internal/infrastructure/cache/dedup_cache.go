// Package cache provides a Redis-backed processed-event marker used to
// short-circuit redeliveries before touching the database. The ledger stays
// the source of truth; a cache miss or Redis outage only costs a DB lookup.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/dcastillo/commispipe/internal/application/ports"
)

const dedupKeyPrefix = "commispipe:processed:"

// DedupCache marks event IDs as processed with a TTL.
type DedupCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.DedupCache = (*DedupCache)(nil)

func NewDedupCache(client *redis.Client, ttl time.Duration) *DedupCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DedupCache{client: client, ttl: ttl}
}

func dedupKey(eventID uuid.UUID) string {
	return dedupKeyPrefix + eventID.String()
}

// MarkProcessed records the event ID. Written only after the ledger commit,
// so a marker present in Redis always corresponds to a processed entry.
func (c *DedupCache) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	if err := c.client.Set(ctx, dedupKey(eventID), 1, c.ttl).Err(); err != nil {
		return fmt.Errorf("marking event %s processed: %w", eventID, err)
	}
	return nil
}

// IsProcessed reports whether the event ID has a marker. Expired keys look
// like unprocessed events; callers fall through to the ledger.
func (c *DedupCache) IsProcessed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	n, err := c.client.Exists(ctx, dedupKey(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking event %s: %w", eventID, err)
	}
	return n > 0, nil
}

// NoopDedupCache is used when no Redis address is configured. Every lookup
// misses, so the worker answers redelivery questions from the ledger alone.
type NoopDedupCache struct{}

var _ ports.DedupCache = NoopDedupCache{}

func (NoopDedupCache) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	return nil
}

func (NoopDedupCache) IsProcessed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return false, nil
}
