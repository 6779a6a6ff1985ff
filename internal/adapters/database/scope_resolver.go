package database

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
)

// FacilityScopeResolver reads the permission scope stored on each facility
type FacilityScopeResolver struct {
	facilities repositories.FacilityRepository
}

// NewFacilityScopeResolver creates a scope resolver backed by facilities.
// Pass the cached facility adapter to avoid a query per request.
func NewFacilityScopeResolver(facilities repositories.FacilityRepository) providers.ScopeResolver {
	return &FacilityScopeResolver{facilities: facilities}
}

// Resolve returns the scope a caller needs to act on facilityID
func (r *FacilityScopeResolver) Resolve(ctx context.Context, facilityID string) (string, error) {
	facility, err := r.facilities.GetByID(ctx, facilityID)
	if err != nil {
		return "", err
	}
	return facility.Scope, nil
}
