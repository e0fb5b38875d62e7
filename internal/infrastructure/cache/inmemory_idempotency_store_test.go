package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventKey(n int) string {
	return fmt.Sprintf("evt-movement-%04d", n)
}

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("first delivery is new", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, eventKey(1), time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("redelivery is a duplicate", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, eventKey(2), time.Hour)
		require.NoError(t, err)
		require.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, eventKey(2), time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired entry can be reprocessed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, eventKey(3), 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, eventKey(3), 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("unknown event", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "evt-never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("recorded event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, eventKey(10), time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, eventKey(10))
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired event", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, eventKey(11), 10*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, eventKey(11))
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("released event can be marked again", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, eventKey(30), time.Hour)
		require.NoError(t, err)
		require.True(t, isNew)

		require.NoError(t, store.Release(ctx, eventKey(30)))

		processed, err := store.IsProcessed(ctx, eventKey(30))
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err = store.MarkProcessed(ctx, eventKey(30), time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("releasing an unknown event is a no-op", func(t *testing.T) {
		assert.NoError(t, store.Release(ctx, "evt-never-seen"))
	})
}

func TestInMemoryIdempotencyStore_Size(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	assert.Zero(t, store.Size())

	_, _ = store.MarkProcessed(ctx, eventKey(20), time.Hour)
	_, _ = store.MarkProcessed(ctx, eventKey(21), time.Hour)
	assert.Equal(t, 2, store.Size())

	// marking the same event again does not grow the store
	_, _ = store.MarkProcessed(ctx, eventKey(20), time.Hour)
	assert.Equal(t, 2, store.Size())
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "evt-short-a", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "evt-short-b", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "evt-long", time.Hour)
	require.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())

	processed, err := store.IsProcessed(ctx, "evt-long")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "evt-short-a")
	require.NoError(t, err)
	assert.False(t, processed)
}

// Racing MarkProcessed calls on one event ID must elect exactly one winner.
func TestInMemoryIdempotencyStore_ConcurrentMarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const workers = 100

	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		go func() {
			isNew, err := store.MarkProcessed(ctx, "evt-contested", time.Hour)
			results <- err == nil && isNew
		}()
	}

	winners := 0
	for i := 0; i < workers; i++ {
		if <-results {
			winners++
		}
	}

	assert.Equal(t, 1, winners)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
