package repositories

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

// BanRepository defines ban data operations
type BanRepository interface {
	// Create creates a new ban
	Create(ctx context.Context, ban *entities.Ban) error

	// ListActiveCovering returns the guest's active bans whose range includes date
	ListActiveCovering(ctx context.Context, guestID string, date entities.Date) ([]*entities.Ban, error)

	// MoveToGuest rewrites every ban of fromGuestID to toGuestID
	MoveToGuest(ctx context.Context, fromGuestID, toGuestID string) (int64, error)
}
