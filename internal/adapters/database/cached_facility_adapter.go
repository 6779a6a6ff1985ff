package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
)

// CachedFacilityAdapter wraps a FacilityRepository with read-through caching.
// Facilities change rarely and are read on every request for scope checks.
type CachedFacilityAdapter struct {
	adapter repositories.FacilityRepository
	cache   providers.CacheProvider
	ttl     int
}

// NewCachedFacilityAdapter creates a new cached facility adapter
func NewCachedFacilityAdapter(adapter repositories.FacilityRepository, cache providers.CacheProvider, ttlSeconds int) repositories.FacilityRepository {
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}
	return &CachedFacilityAdapter{
		adapter: adapter,
		cache:   cache,
		ttl:     ttlSeconds,
	}
}

func facilityCacheKey(id string) string {
	return fmt.Sprintf("facility:%s", id)
}

// Create creates the facility and drops any stale cache entry
func (a *CachedFacilityAdapter) Create(ctx context.Context, facility *entities.Facility) error {
	if err := a.adapter.Create(ctx, facility); err != nil {
		return err
	}
	if err := a.cache.Delete(ctx, facilityCacheKey(facility.ID)); err != nil {
		log.Warn().Err(err).Str("facility_id", facility.ID).Msg("failed to invalidate cached facility")
	}
	return nil
}

// GetByID retrieves a facility by ID with caching
func (a *CachedFacilityAdapter) GetByID(ctx context.Context, id string) (*entities.Facility, error) {
	key := facilityCacheKey(id)

	cached, err := a.cache.Get(ctx, key)
	if err == nil {
		var facility entities.Facility
		if err := json.Unmarshal(cached, &facility); err == nil {
			return &facility, nil
		}
		log.Warn().Err(err).Str("facility_id", id).Msg("failed to unmarshal cached facility")
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		log.Warn().Err(err).Str("facility_id", id).Msg("facility cache unavailable")
	}

	facility, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(facility); err == nil {
		if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
			log.Warn().Err(err).Str("facility_id", id).Msg("failed to cache facility")
		}
	}

	return facility, nil
}
