package modelcache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	// Packages
	modelcache "github.com/mutablelogic/go-openai/pkg/modelcache"
	assert "github.com/stretchr/testify/assert"
)

type testModel struct {
	Name string
}

func newCache(ttl time.Duration) *modelcache.ModelCache[testModel] {
	return modelcache.NewModelCache(ttl, 10, func(m testModel) string {
		return m.Name
	})
}

func Test_modelcache_001(t *testing.T) {
	assert := assert.New(t)
	cache := newCache(time.Minute)

	// The first lookup fetches, the second is served from the cache
	var calls int
	fetch := func(ctx context.Context, name string) (*testModel, error) {
		calls++
		return &testModel{Name: name}, nil
	}

	model, err := cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.NoError(err)
	assert.Equal("gpt-4o", model.Name)
	assert.Equal(1, calls)

	model, err = cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.NoError(err)
	assert.Equal("gpt-4o", model.Name)
	assert.Equal(1, calls)
}

func Test_modelcache_002(t *testing.T) {
	assert := assert.New(t)
	cache := newCache(time.Minute)

	// A failed fetch is not cached
	var calls int
	fetch := func(ctx context.Context, name string) (*testModel, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("unavailable")
		}
		return &testModel{Name: name}, nil
	}

	_, err := cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.Error(err)

	model, err := cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.NoError(err)
	assert.Equal("gpt-4o", model.Name)
	assert.Equal(2, calls)
}

func Test_modelcache_003(t *testing.T) {
	assert := assert.New(t)
	cache := newCache(time.Minute)

	// Listing populates the cache and serves it sorted while live
	var calls int
	list := func(ctx context.Context) ([]testModel, error) {
		calls++
		return []testModel{{Name: "whisper-1"}, {Name: "gpt-4o"}}, nil
	}

	models, err := cache.ListModels(context.TODO(), list)
	assert.NoError(err)
	assert.Equal([]testModel{{Name: "gpt-4o"}, {Name: "whisper-1"}}, models)
	assert.Equal(1, calls)

	models, err = cache.ListModels(context.TODO(), list)
	assert.NoError(err)
	assert.Equal([]testModel{{Name: "gpt-4o"}, {Name: "whisper-1"}}, models)
	assert.Equal(1, calls)

	// Single lookups are also served from the populated cache
	model, err := cache.GetModel(context.TODO(), "whisper-1", func(ctx context.Context, name string) (*testModel, error) {
		t.Fatal("unexpected fetch")
		return nil, nil
	})
	assert.NoError(err)
	assert.Equal("whisper-1", model.Name)
}

func Test_modelcache_004(t *testing.T) {
	assert := assert.New(t)

	// Expired entries are refetched
	cache := newCache(time.Nanosecond)

	var calls int
	fetch := func(ctx context.Context, name string) (*testModel, error) {
		calls++
		return &testModel{Name: name}, nil
	}

	_, err := cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.NoError(err)
	time.Sleep(time.Millisecond)
	_, err = cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.NoError(err)
	assert.Equal(2, calls)
}

func Test_modelcache_005(t *testing.T) {
	assert := assert.New(t)
	cache := newCache(time.Minute)

	// Invalidate drops all entries
	var calls int
	fetch := func(ctx context.Context, name string) (*testModel, error) {
		calls++
		return &testModel{Name: name}, nil
	}

	_, err := cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.NoError(err)
	cache.Invalidate()
	_, err = cache.GetModel(context.TODO(), "gpt-4o", fetch)
	assert.NoError(err)
	assert.Equal(2, calls)
}
