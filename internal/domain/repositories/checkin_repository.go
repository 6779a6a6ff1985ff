package repositories

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

// CheckinRepository is the store of per-night mat slots. The
// (facility, date, mat) key and the one-mat-per-guest-per-night rule are
// enforced by unique indexes; violations come back as CONFLICT errors.
type CheckinRepository interface {
	// CreateBatch inserts all checkins in a single statement
	CreateBatch(ctx context.Context, checkins []*entities.Checkin) error

	// GetByID retrieves a checkin by ID
	GetByID(ctx context.Context, id string) (*entities.Checkin, error)

	// ListByFacilityDate returns a night's checkins ordered by mat number
	ListByFacilityDate(ctx context.Context, facilityID string, date entities.Date) ([]*entities.Checkin, error)

	// CountByFacilityDate counts a night's checkins
	CountByFacilityDate(ctx context.Context, facilityID string, date entities.Date) (int, error)

	// ListByGuest returns every checkin held by a guest
	ListByGuest(ctx context.Context, guestID string) ([]*entities.Checkin, error)

	// FindByGuestDate returns the checkin a guest occupies on date, or nil
	FindByGuestDate(ctx context.Context, facilityID, guestID string, date entities.Date) (*entities.Checkin, error)

	// AssignIfAvailable sets guest and details only while the mat is available.
	// It returns a CONFLICT error when the mat was taken in the meantime.
	AssignIfAvailable(ctx context.Context, checkin *entities.Checkin) error

	// ClearIfHeldBy empties the mat only while guestID still holds it.
	// It returns a CONFLICT error when the holder changed.
	ClearIfHeldBy(ctx context.Context, checkinID, guestID string) error

	// UpdateDetails writes the detail fields without touching the guest
	UpdateDetails(ctx context.Context, checkin *entities.Checkin) error

	// DeleteByFacilityDate removes a night's checkins, or none of them if any
	// mat of the night is occupied
	DeleteByFacilityDate(ctx context.Context, facilityID string, date entities.Date) (int64, error)

	// ReassignGuest moves every checkin of fromGuestID in the facility to toGuestID
	ReassignGuest(ctx context.Context, facilityID, fromGuestID, toGuestID string) (int64, error)
}
