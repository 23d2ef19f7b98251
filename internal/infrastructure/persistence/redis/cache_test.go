package redis

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetOrLoadSafe(t *testing.T) {
	ctx := context.Background()

	t.Run("loader runs once and fills cache", func(t *testing.T) {
		client, _ := newTestClient(t)
		cache := NewCache(client)

		var loads int64
		loader := func() (interface{}, error) {
			atomic.AddInt64(&loads, 1)
			return map[string]string{"mirror_id": "S1"}, nil
		}

		first, err := cache.GetOrLoadSafe(ctx, "storyboard:p1:sets", time.Minute, loader)
		require.NoError(t, err)

		second, err := cache.GetOrLoadSafe(ctx, "storyboard:p1:sets", time.Minute, loader)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int64(1), atomic.LoadInt64(&loads))
	})

	t.Run("concurrent misses share one load", func(t *testing.T) {
		client, _ := newTestClient(t)
		cache := NewCache(client)

		var loads int64
		loader := func() (interface{}, error) {
			atomic.AddInt64(&loads, 1)
			time.Sleep(20 * time.Millisecond)
			return "value", nil
		}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := cache.GetOrLoadSafe(ctx, "storyboard:p1:sets", time.Minute, loader)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), atomic.LoadInt64(&loads))
	})

	t.Run("loader error propagates", func(t *testing.T) {
		client, _ := newTestClient(t)
		cache := NewCache(client)

		_, err := cache.GetOrLoadSafe(ctx, "k", time.Minute, func() (interface{}, error) {
			return nil, fmt.Errorf("db down")
		})
		assert.Error(t, err)
	})
}

func TestCacheInvalidateProject(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	cache := NewCache(client)

	require.NoError(t, client.rdb.Set(ctx, BuildEntitiesKey("p1"), "a", time.Minute).Err())
	require.NoError(t, client.rdb.Set(ctx, BuildTranscriptKey("p1"), "b", time.Minute).Err())
	require.NoError(t, client.rdb.Set(ctx, BuildEntitiesKey("p2"), "c", time.Minute).Err())

	require.NoError(t, cache.InvalidateProject(ctx, "p1"))

	assert.Zero(t, client.rdb.Exists(ctx, BuildEntitiesKey("p1")).Val())
	assert.Zero(t, client.rdb.Exists(ctx, BuildTranscriptKey("p1")).Val())
	assert.Equal(t, int64(1), client.rdb.Exists(ctx, BuildEntitiesKey("p2")).Val())
}

func TestCacheInvalidateTranscript(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	cache := NewCache(client)

	require.NoError(t, client.rdb.Set(ctx, BuildEntitiesKey("p1"), "a", time.Minute).Err())
	require.NoError(t, client.rdb.Set(ctx, BuildTranscriptKey("p1"), "b", time.Minute).Err())

	require.NoError(t, cache.InvalidateTranscript(ctx, "p1"))

	assert.Equal(t, int64(1), client.rdb.Exists(ctx, BuildEntitiesKey("p1")).Val())
	assert.Zero(t, client.rdb.Exists(ctx, BuildTranscriptKey("p1")).Val())
}
