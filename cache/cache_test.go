package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sniper-dashboard/models"
)

func TestDisabledRedisClient(t *testing.T) {
	var r *RedisClient
	ctx := context.Background()

	assert.ErrorIs(t, r.Set(ctx, "k", 1, time.Minute), ErrNotInitialized)
	assert.ErrorIs(t, r.Get(ctx, "k", new(int)), ErrNotInitialized)
	assert.ErrorIs(t, r.Publish(ctx, "c", 1), ErrNotInitialized)
	assert.False(t, r.Exists(ctx, "k"))
	assert.NoError(t, r.Close())

	_, err := r.SetNX(ctx, "k", 1, time.Minute)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSnapshotCacheWithoutRedis(t *testing.T) {
	c := NewSnapshotCache(nil)

	require.NoError(t, c.Handle(models.StateEvent{Type: models.EventScanApplied}))
	snap, ok := c.GetSnapshot(context.Background())
	assert.Nil(t, snap)
	assert.False(t, ok)
}

func TestAcquireCooldownWithoutRedisAlwaysProceeds(t *testing.T) {
	assert.True(t, AcquireCooldown(context.Background(), nil, "webhook:DEAD", time.Minute))
	assert.True(t, AcquireCooldown(context.Background(), nil, "webhook:DEAD", time.Minute))
}

func TestGenerateDataHash(t *testing.T) {
	a := models.Snapshot{Mood: models.MoodNeutral, ScanCount: 1}
	b := models.Snapshot{Mood: models.MoodNeutral, ScanCount: 2}

	assert.Equal(t, GenerateDataHash(a), GenerateDataHash(a))
	assert.NotEqual(t, GenerateDataHash(a), GenerateDataHash(b))
	assert.Len(t, GenerateDataHash(a), 16)
}
