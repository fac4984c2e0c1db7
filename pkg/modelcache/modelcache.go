/*
modelcache caches model metadata fetched from an API, with a TTL, so
repeated lookups do not refetch. The cache is safe for concurrent use.
*/
package modelcache

import (
	"context"
	"sort"
	"sync"
	"time"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type entry[T any] struct {
	ts    time.Time
	model T
}

// ModelCache holds models of type T keyed by name.
type ModelCache[T any] struct {
	mu  sync.Mutex
	ttl time.Duration
	key func(T) string
	m   map[string]entry[T]
}

// GetModelFunc fetches a single model by name
type GetModelFunc[T any] func(context.Context, string) (*T, error)

// ListModelsFunc fetches all models
type ListModelsFunc[T any] func(context.Context) ([]T, error)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewModelCache creates a cache with the given TTL and initial capacity.
// The key function returns the name a model is cached under.
func NewModelCache[T any](ttl time.Duration, cap int, key func(T) string) *ModelCache[T] {
	self := new(ModelCache[T])
	if ttl > 0 {
		self.ttl = ttl
	}
	self.key = key
	self.m = make(map[string]entry[T], cap)
	return self
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GetModel returns the named model, fetching through fn when the cache
// has no live entry. A failed fetch invalidates any stale entry.
func (mc *ModelCache[T]) GetModel(ctx context.Context, name string, fn GetModelFunc[T]) (*T, error) {
	mc.mu.Lock()
	if e, ok := mc.m[name]; ok {
		if time.Since(e.ts) < mc.ttl {
			model := e.model
			mc.mu.Unlock()
			return &model, nil
		}
		delete(mc.m, name)
	}
	mc.mu.Unlock()

	model, err := fn(ctx, name)
	if err != nil {
		mc.mu.Lock()
		delete(mc.m, name)
		mc.mu.Unlock()
		return nil, err
	}

	mc.mu.Lock()
	mc.m[mc.key(*model)] = entry[T]{ts: time.Now(), model: *model}
	mc.mu.Unlock()
	return model, nil
}

// ListModels returns all models, serving from the cache when every
// cached entry is live, and otherwise refetching through fn and
// repopulating. Results are sorted by name.
func (mc *ModelCache[T]) ListModels(ctx context.Context, fn ListModelsFunc[T]) ([]T, error) {
	if models, ok := mc.cached(); ok {
		return models, nil
	}

	models, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	mc.mu.Lock()
	now := time.Now()
	for _, model := range models {
		mc.m[mc.key(model)] = entry[T]{ts: now, model: model}
	}
	mc.mu.Unlock()

	mc.sortByName(models)
	return models, nil
}

// Invalidate removes all cached entries
func (mc *ModelCache[T]) Invalidate() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	clear(mc.m)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (mc *ModelCache[T]) cached() ([]T, bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.ttl == 0 || len(mc.m) == 0 {
		return nil, false
	}

	now := time.Now()
	models := make([]T, 0, len(mc.m))
	for name, e := range mc.m {
		if now.Sub(e.ts) >= mc.ttl {
			delete(mc.m, name)
			return nil, false
		}
		models = append(models, e.model)
	}

	mc.sortByName(models)
	return models, true
}

func (mc *ModelCache[T]) sortByName(models []T) {
	sort.Slice(models, func(i, j int) bool {
		return mc.key(models[i]) < mc.key(models[j])
	})
}
