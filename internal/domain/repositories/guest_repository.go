package repositories

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

// GuestRepository defines guest data operations
type GuestRepository interface {
	// Create creates a new guest
	Create(ctx context.Context, guest *entities.Guest) error

	// GetByID retrieves a guest by ID
	GetByID(ctx context.Context, id string) (*entities.Guest, error)

	// Delete removes a guest
	Delete(ctx context.Context, id string) error
}
