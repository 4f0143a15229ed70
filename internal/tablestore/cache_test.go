package tablestore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contextutils "servicelog/internal/utils"
)

func TestTableCache_GetOrLoadCachesPerTable(t *testing.T) {
	cache := NewTableCache()
	loads := 0

	load := func(_ context.Context) (interface{}, error) {
		loads++
		return []string{"a", "b"}, nil
	}

	first, err := cache.GetOrLoad(context.Background(), "Service_Log", load)
	require.NoError(t, err)
	second, err := cache.GetOrLoad(context.Background(), "Service_Log", load)
	require.NoError(t, err)

	assert.Equal(t, 1, loads, "second access must hit the cache")
	assert.Equal(t, first, second)

	// A different table loads independently.
	_, err = cache.GetOrLoad(context.Background(), "Customers", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestTableCache_InvalidateForcesReload(t *testing.T) {
	cache := NewTableCache()
	loads := 0
	load := func(_ context.Context) (interface{}, error) {
		loads++
		return loads, nil
	}

	v0 := cache.Version()
	_, err := cache.GetOrLoad(context.Background(), "Service_Log", load)
	require.NoError(t, err)

	cache.Invalidate()
	assert.Equal(t, v0+1, cache.Version())

	rows, err := cache.GetOrLoad(context.Background(), "Service_Log", load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
	assert.Equal(t, 2, rows)
}

func TestTableCache_LoadErrorNotCached(t *testing.T) {
	cache := NewTableCache()
	calls := 0
	load := func(_ context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, contextutils.ErrStoreConnection
		}
		return "ok", nil
	}

	_, err := cache.GetOrLoad(context.Background(), "Service_Log", load)
	require.Error(t, err)

	rows, err := cache.GetOrLoad(context.Background(), "Service_Log", load)
	require.NoError(t, err)
	assert.Equal(t, "ok", rows)
	assert.Equal(t, 2, calls)
}

func TestTableCache_ConcurrentAccess(t *testing.T) {
	cache := NewTableCache()
	var mu sync.Mutex
	loads := 0
	load := func(_ context.Context) (interface{}, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		return "snapshot", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%5 == 0 {
				cache.Invalidate()
			}
			rows, err := cache.GetOrLoad(context.Background(), "Service_Log", load)
			assert.NoError(t, err)
			assert.Equal(t, "snapshot", rows)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, loads, 1)
}
