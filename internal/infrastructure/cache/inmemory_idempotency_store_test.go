package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first mark succeeds", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "clone:abc", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("second mark is rejected", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "clone:abc", time.Minute)
		require.NoError(t, err)
		assert.False(t, marked)
	})

	t.Run("expired key can be re-marked", func(t *testing.T) {
		marked, err := store.MarkProcessed(ctx, "clone:short", time.Millisecond)
		require.NoError(t, err)
		assert.True(t, marked)

		time.Sleep(5 * time.Millisecond)

		marked, err = store.MarkProcessed(ctx, "clone:short", time.Minute)
		require.NoError(t, err)
		assert.True(t, marked)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	processed, err := store.IsProcessed(ctx, "import:xyz")
	require.NoError(t, err)
	assert.False(t, processed)

	_, err = store.MarkProcessed(ctx, "import:xyz", time.Minute)
	require.NoError(t, err)

	processed, err = store.IsProcessed(ctx, "import:xyz")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestInMemoryIdempotencyStore_ConcurrentMarks(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			marked, err := store.MarkProcessed(ctx, "race-key", time.Minute)
			require.NoError(t, err)
			if marked {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.MarkProcessed(ctx, fmt.Sprintf("key-%d", i), time.Millisecond)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, store.Size())

	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 0, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
