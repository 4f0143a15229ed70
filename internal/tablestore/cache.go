package tablestore

import (
	"context"
	"sync"

	"servicelog/internal/observability"
)

// cacheKey identifies one cached table snapshot.
type cacheKey struct {
	table   string
	version uint64
}

// TableCache memoizes full-table fetches keyed by (table, version). Readers
// share the snapshot until Invalidate bumps the version; entries for older
// versions are dropped on the next load of that table.
type TableCache struct {
	mu      sync.RWMutex
	version uint64
	entries map[cacheKey]interface{}
}

// NewTableCache creates an empty cache at version zero.
func NewTableCache() *TableCache {
	return &TableCache{
		entries: make(map[cacheKey]interface{}),
	}
}

// Version returns the current cache generation.
func (tc *TableCache) Version() uint64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.version
}

// Invalidate bumps the cache generation. Every table is reloaded on its next
// access; snapshots already handed out stay valid for their readers.
func (tc *TableCache) Invalidate() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.version++
}

// GetOrLoad returns the cached snapshot for table at the current version,
// loading it with load on a miss. A load error is returned without caching,
// so the next caller retries.
func (tc *TableCache) GetOrLoad(ctx context.Context, table string, load func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	tc.mu.RLock()
	version := tc.version
	cached, ok := tc.entries[cacheKey{table: table, version: version}]
	tc.mu.RUnlock()

	ctx, span := observability.TraceStoreFunction(ctx, "cache_get",
		observability.AttributeTable(table),
		observability.AttributeCacheHit(ok),
	)
	defer observability.FinishSpan(span, nil)

	if ok {
		return cached, nil
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()
	// Drop generations of this table older than the one we loaded for.
	for key := range tc.entries {
		if key.table == table && key.version < version {
			delete(tc.entries, key)
		}
	}
	// Store under the version observed before loading. If an Invalidate
	// landed mid-load the entry is already stale and the next access at the
	// new version reloads.
	tc.entries[cacheKey{table: table, version: version}] = rows
	return rows, nil
}
