package repositories

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

// FacilityRepository looks up facilities
type FacilityRepository interface {
	// Create creates a new facility
	Create(ctx context.Context, facility *entities.Facility) error

	// GetByID retrieves a facility by ID
	GetByID(ctx context.Context, id string) (*entities.Facility, error)
}
