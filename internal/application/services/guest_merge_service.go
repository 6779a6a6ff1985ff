package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/observability"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// GuestMergeService folds a duplicate guest into another one
type GuestMergeService struct {
	lookups
	tx       repositories.TxManager
	notifier notifier
	metrics  *observability.Metrics
}

// NewGuestMergeService creates a new guest merge service
func NewGuestMergeService(
	facilities repositories.FacilityRepository,
	guests repositories.GuestRepository,
	checkins repositories.CheckinRepository,
	tx repositories.TxManager,
) *GuestMergeService {
	return &GuestMergeService{
		lookups: lookups{
			facilities: facilities,
			guests:     guests,
			checkins:   checkins,
		},
		tx: tx,
	}
}

// SetEventBus enables event publishing after a merge
func (s *GuestMergeService) SetEventBus(bus providers.EventBus) {
	s.notifier.bus = bus
}

// SetMetrics enables merge counters
func (s *GuestMergeService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Merge moves every checkin and ban of fromGuestID to toGuestID and deletes
// fromGuestID. It fails with a CONFLICT naming the dates if both guests
// occupy a mat on the same night. The rewrite and the delete share one
// transaction, so a failure leaves both guests untouched.
func (s *GuestMergeService) Merge(ctx context.Context, facilityID, toGuestID, fromGuestID string) (_ *entities.Guest, err error) {
	ctx, span := observability.StartSpan(ctx, "GuestMergeService.Merge")
	observability.SetSpanAttributes(span,
		attribute.String("facility.id", facilityID),
		attribute.String("guest.to", toGuestID),
		attribute.String("guest.from", fromGuestID),
	)
	defer func() {
		observability.RecordError(span, err)
		observability.RecordMerge(ctx, s.metrics, err)
		span.End()
	}()

	if _, err := s.facility(ctx, facilityID); err != nil {
		return nil, err
	}
	if toGuestID == fromGuestID {
		return nil, apperrors.NewBadRequestError("cannot merge a guest into itself").WithField("from_guest_id")
	}
	if _, err := s.guestInFacility(ctx, facilityID, toGuestID); err != nil {
		return nil, err
	}
	if _, err := s.guestInFacility(ctx, facilityID, fromGuestID); err != nil {
		return nil, err
	}

	toCheckins, err := s.checkins.ListByGuest(ctx, toGuestID)
	if err != nil {
		return nil, err
	}
	fromCheckins, err := s.checkins.ListByGuest(ctx, fromGuestID)
	if err != nil {
		return nil, err
	}
	if overlap := overlappingDates(toCheckins, fromCheckins); len(overlap) > 0 {
		return nil, apperrors.NewConflictError(fmt.Sprintf(
			"guests %s and %s both occupy a mat on %s", toGuestID, fromGuestID, strings.Join(overlap, ", "),
		)).WithField("from_guest_id")
	}

	var moved, bans int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx repositories.TxRepositories) error {
		var err error
		if moved, err = tx.Checkins().ReassignGuest(ctx, facilityID, fromGuestID, toGuestID); err != nil {
			return err
		}
		if bans, err = tx.Bans().MoveToGuest(ctx, fromGuestID, toGuestID); err != nil {
			return err
		}
		return tx.Guests().Delete(ctx, fromGuestID)
	})
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("facility_id", facilityID).
		Str("to_guest_id", toGuestID).
		Str("from_guest_id", fromGuestID).
		Int64("checkins_moved", moved).
		Int64("bans_moved", bans).
		Msg("merged guests")
	s.notifier.publish(ctx, entities.NewCheckinEvent(facilityID, entities.CheckinEventTypeGuestMerge, nil, toGuestID, checkinIDs(fromCheckins)...))

	guest, err := s.guests.GetByID(ctx, toGuestID)
	if err != nil {
		return nil, err
	}
	guest.Checkins = nil
	return guest, nil
}

// overlappingDates returns, sorted, the nights on which both sets hold a mat
func overlappingDates(a, b []*entities.Checkin) []string {
	nights := make(map[string]struct{}, len(a))
	for _, c := range a {
		if !c.IsAvailable() {
			nights[c.CheckinDate.String()] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	var overlap []string
	for _, c := range b {
		if c.IsAvailable() {
			continue
		}
		night := c.CheckinDate.String()
		if _, ok := nights[night]; !ok {
			continue
		}
		if _, dup := seen[night]; !dup {
			seen[night] = struct{}{}
			overlap = append(overlap, night)
		}
	}
	sort.Strings(overlap)
	return overlap
}
