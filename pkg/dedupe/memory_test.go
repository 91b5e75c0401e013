package dedupe_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoxlab/notify/pkg/dedupe"
)

// steppableClock lets tests advance time without sleeping.
type steppableClock struct {
	now time.Time
}

func (c *steppableClock) Now() time.Time        { return c.now }
func (c *steppableClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestMemoryRememberExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &steppableClock{now: time.Now()}
	store := dedupe.NewMemory(dedupe.WithClock(clock.Now))

	exists, err := store.Exists(ctx, "order:42")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Remember(ctx, "order:42", 600))

	exists, err = store.Exists(ctx, "order:42")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.Exists(ctx, "order:43")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &steppableClock{now: time.Now()}
	store := dedupe.NewMemory(dedupe.WithClock(clock.Now))

	require.NoError(t, store.Remember(ctx, "k", 60))

	clock.Advance(59 * time.Second)
	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	clock.Advance(2 * time.Second)
	exists, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryTTLFloor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &steppableClock{now: time.Now()}
	store := dedupe.NewMemory(dedupe.WithClock(clock.Now))

	// A zero TTL still holds the key for the one-second floor.
	require.NoError(t, store.Remember(ctx, "k", 0))

	clock.Advance(500 * time.Millisecond)
	exists, err := store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	clock.Advance(time.Second)
	exists, err = store.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryRememberIfAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &steppableClock{now: time.Now()}
	store := dedupe.NewMemory(dedupe.WithClock(clock.Now))

	inserted, err := store.RememberIfAbsent(ctx, "k", 60)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.RememberIfAbsent(ctx, "k", 60)
	require.NoError(t, err)
	assert.False(t, inserted)

	clock.Advance(61 * time.Second)
	inserted, err = store.RememberIfAbsent(ctx, "k", 60)
	require.NoError(t, err)
	assert.True(t, inserted)
}
