package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"sniper-dashboard/models"
)

// Redis keys and channels used by the dashboard.
const (
	SnapshotKey     = "dashboard:snapshot"
	EventsChannel   = "dashboard:events"
	cooldownPrefix  = "dashboard:cooldown:"
	snapshotTTL     = 10 * time.Minute
	mirrorOpTimeout = 2 * time.Second
)

// SnapshotCache mirrors the latest engine snapshot into Redis and
// republishes state events on EventsChannel for out-of-process readers.
type SnapshotCache struct {
	redis *RedisClient

	mu       sync.Mutex
	lastHash string
}

// NewSnapshotCache creates a new snapshot mirror. A nil client disables it.
func NewSnapshotCache(redis *RedisClient) *SnapshotCache {
	return &SnapshotCache{
		redis: redis,
	}
}

// Name implements handlers.StateHandler.
func (c *SnapshotCache) Name() string { return "redis-mirror" }

// Handle stores the event's snapshot under SnapshotKey and publishes the
// event. Events whose snapshot is unchanged from the last one are skipped.
func (c *SnapshotCache) Handle(ev models.StateEvent) error {
	if !c.redis.ready() {
		return nil
	}

	hash := GenerateDataHash(ev.Snapshot)
	c.mu.Lock()
	if hash == c.lastHash {
		c.mu.Unlock()
		return nil
	}
	c.lastHash = hash
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), mirrorOpTimeout)
	defer cancel()

	if err := c.redis.Set(ctx, SnapshotKey, ev.Snapshot, snapshotTTL); err != nil {
		return fmt.Errorf("mirror snapshot: %w", err)
	}
	if err := c.redis.Publish(ctx, EventsChannel, ev); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// GetSnapshot retrieves the mirrored snapshot.
// Returns the snapshot and true if found, nil and false otherwise
func (c *SnapshotCache) GetSnapshot(ctx context.Context) (*models.Snapshot, bool) {
	if !c.redis.ready() {
		return nil, false
	}

	var snap models.Snapshot
	if err := c.redis.Get(ctx, SnapshotKey, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// AcquireCooldown claims a cooldown slot for key. It returns true when the
// caller may proceed. Without Redis every call proceeds.
func AcquireCooldown(ctx context.Context, r *RedisClient, key string, ttl time.Duration) bool {
	if !r.ready() {
		return true
	}
	ok, err := r.SetNX(ctx, cooldownPrefix+key, time.Now().Unix(), ttl)
	if err != nil {
		// Redis trouble must not silence notifications.
		return true
	}
	return ok
}

// GenerateDataHash creates a hash from data to detect whether it changed
func GenerateDataHash(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf("%x", hash[:8]) // Use first 8 bytes for shorter hash
}
