package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterbeds/matcheckin/internal/adapters/database"
	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

type memoryCache struct {
	data map[string][]byte
	fail bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	if c.fail {
		return nil, errors.New("redis down")
	}
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ int) error {
	if c.fail {
		return errors.New("redis down")
	}
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type countingFacilities struct {
	facilities map[string]*entities.Facility
	gets       int
}

func (r *countingFacilities) Create(_ context.Context, f *entities.Facility) error {
	r.facilities[f.ID] = f
	return nil
}

func (r *countingFacilities) GetByID(_ context.Context, id string) (*entities.Facility, error) {
	r.gets++
	f, ok := r.facilities[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("facility not found")
	}
	return f, nil
}

func TestCachedFacilityAdapter_GetByID(t *testing.T) {
	ctx := context.Background()
	inner := &countingFacilities{facilities: map[string]*entities.Facility{
		"f1": {ID: "f1", Name: "North Shelter", Scope: "facility:north"},
	}}

	t.Run("second read is served from cache", func(t *testing.T) {
		cached := database.NewCachedFacilityAdapter(inner, newMemoryCache(), 60)

		first, err := cached.GetByID(ctx, "f1")
		require.NoError(t, err)
		second, err := cached.GetByID(ctx, "f1")
		require.NoError(t, err)

		assert.Equal(t, first.Scope, second.Scope)
		assert.Equal(t, 1, inner.gets)
	})

	t.Run("cache outage falls through to the database", func(t *testing.T) {
		inner.gets = 0
		cached := database.NewCachedFacilityAdapter(inner, &memoryCache{fail: true}, 60)

		f, err := cached.GetByID(ctx, "f1")
		require.NoError(t, err)
		assert.Equal(t, "North Shelter", f.Name)
		assert.Equal(t, 1, inner.gets)
	})

	t.Run("not found is not cached", func(t *testing.T) {
		cache := newMemoryCache()
		cached := database.NewCachedFacilityAdapter(inner, cache, 60)

		_, err := cached.GetByID(ctx, "nope")
		assert.True(t, apperrors.IsNotFound(err))
		assert.Empty(t, cache.data)
	})
}

func TestFacilityScopeResolver_Resolve(t *testing.T) {
	inner := &countingFacilities{facilities: map[string]*entities.Facility{
		"f1": {ID: "f1", Scope: "facility:north"},
	}}
	resolver := database.NewFacilityScopeResolver(inner)

	scope, err := resolver.Resolve(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "facility:north", scope)

	_, err = resolver.Resolve(context.Background(), "f2")
	assert.True(t, apperrors.IsNotFound(err))
}
