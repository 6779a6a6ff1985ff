package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/observability"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// AssignPayload puts a guest on an available mat
type AssignPayload struct {
	GuestID string `json:"guest_id"`
	entities.Details
}

// ReassignPayload moves an occupancy to CheckinID. GuestID is optional and,
// when set, must match the guest being moved. Non-nil details replace the
// ones carried over from the source mat.
type ReassignPayload struct {
	CheckinID string  `json:"checkin_id"`
	GuestID   *string `json:"guest_id,omitempty"`
	entities.Details
}

// CheckinService drives checkin state transitions. It keeps no state of
// its own; uniqueness is enforced by the store.
type CheckinService struct {
	lookups
	tx       repositories.TxManager
	notifier notifier
	metrics  *observability.Metrics
}

// NewCheckinService creates a new checkin service
func NewCheckinService(
	facilities repositories.FacilityRepository,
	templates repositories.TemplateRepository,
	guests repositories.GuestRepository,
	bans repositories.BanRepository,
	checkins repositories.CheckinRepository,
	tx repositories.TxManager,
) *CheckinService {
	return &CheckinService{
		lookups: lookups{
			facilities: facilities,
			templates:  templates,
			guests:     guests,
			bans:       bans,
			checkins:   checkins,
		},
		tx: tx,
	}
}

// SetEventBus enables event publishing after each mutation
func (s *CheckinService) SetEventBus(bus providers.EventBus) {
	s.notifier.bus = bus
}

// SetMetrics enables transition counters
func (s *CheckinService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

func (s *CheckinService) trace(ctx context.Context, op, facilityID string) (context.Context, func(*error)) {
	ctx, span := observability.StartSpan(ctx, "CheckinService."+op)
	observability.SetSpanAttributes(span, attribute.String("facility.id", facilityID))
	return ctx, func(errp *error) {
		observability.RecordError(span, *errp)
		observability.RecordTransition(ctx, s.metrics, op, *errp)
		span.End()
	}
}

func requireDate(date entities.Date) error {
	if date.IsZero() {
		return apperrors.NewBadRequestError("checkin date is required").WithField("checkin_date")
	}
	return nil
}

// Generate creates one available checkin per mat of the template for a
// night that has none yet. All rows are written by a single statement.
func (s *CheckinService) Generate(ctx context.Context, facilityID string, date entities.Date, templateID string) (_ []*entities.Checkin, err error) {
	ctx, done := s.trace(ctx, "generate", facilityID)
	defer done(&err)

	if err := requireDate(date); err != nil {
		return nil, err
	}
	if _, err := s.facility(ctx, facilityID); err != nil {
		return nil, err
	}
	template, err := s.templateInFacility(ctx, facilityID, templateID)
	if err != nil {
		return nil, err
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.checkins.CountByFacilityDate(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf(
			"%d checkins already exist for %s", existing, date,
		)).WithField("checkin_date")
	}

	layout, err := template.Layout()
	if err != nil {
		return nil, err
	}

	checkins := make([]*entities.Checkin, 0, len(layout.Mats))
	for _, mat := range layout.Mats {
		checkins = append(checkins, &entities.Checkin{
			ID:          uuid.New().String(),
			FacilityID:  facilityID,
			CheckinDate: date,
			MatNumber:   mat,
			Features:    layout.Features[mat],
		})
	}

	if err := s.checkins.CreateBatch(ctx, checkins); err != nil {
		return nil, err
	}

	s.notifier.publish(ctx, entities.NewCheckinEvent(facilityID, entities.CheckinEventTypeGenerated, &date, "", checkinIDs(checkins)...))
	observability.LoggerFromContext(ctx).Info().
		Str("facility_id", facilityID).
		Str("checkin_date", date.String()).
		Str("template_id", templateID).
		Int("mats", len(checkins)).
		Msg("generated checkins")

	return checkins, nil
}

// List returns a night's checkins ordered by mat number
func (s *CheckinService) List(ctx context.Context, facilityID string, date entities.Date) ([]*entities.Checkin, error) {
	if err := requireDate(date); err != nil {
		return nil, err
	}
	if _, err := s.facility(ctx, facilityID); err != nil {
		return nil, err
	}
	return s.checkins.ListByFacilityDate(ctx, facilityID, date)
}

// Get returns one checkin of the facility
func (s *CheckinService) Get(ctx context.Context, facilityID, checkinID string) (*entities.Checkin, error) {
	return s.checkinInFacility(ctx, facilityID, checkinID)
}

// DeleteNight removes every checkin of a night in which no mat is occupied
func (s *CheckinService) DeleteNight(ctx context.Context, facilityID string, date entities.Date) (_ int64, err error) {
	ctx, done := s.trace(ctx, "delete_night", facilityID)
	defer done(&err)

	checkins, err := s.List(ctx, facilityID, date)
	if err != nil {
		return 0, err
	}
	if len(checkins) == 0 {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("no checkins exist for %s", date)).WithField("checkin_date")
	}
	for _, c := range checkins {
		if !c.IsAvailable() {
			return 0, apperrors.NewBadRequestError(fmt.Sprintf(
				"mat %d is occupied on %s (checkin %s)", c.MatNumber, date, c.ID,
			)).WithField("checkin_date")
		}
	}

	deleted, err := s.checkins.DeleteByFacilityDate(ctx, facilityID, date)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, apperrors.NewConflictError(fmt.Sprintf("a mat was assigned on %s while deleting", date)).WithField("checkin_date")
	}

	s.notifier.publish(ctx, entities.NewCheckinEvent(facilityID, entities.CheckinEventTypeCleared, &date, "", checkinIDs(checkins)...))
	return deleted, nil
}

// Assign puts a guest on an available mat. The guest must belong to the
// facility, must not be banned on the date and must not hold another mat
// that night.
func (s *CheckinService) Assign(ctx context.Context, facilityID, checkinID string, payload AssignPayload) (_ *entities.Checkin, err error) {
	ctx, done := s.trace(ctx, "assign", facilityID)
	defer done(&err)

	checkin, err := s.checkinInFacility(ctx, facilityID, checkinID)
	if err != nil {
		return nil, err
	}
	if !checkin.IsAvailable() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf(
			"checkin %s is already occupied; use reassign to move a guest", checkin.ID,
		)).WithField("checkin_id")
	}
	if _, err := s.guestInFacility(ctx, facilityID, payload.GuestID); err != nil {
		return nil, err
	}
	if err := payload.Details.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNotBanned(ctx, payload.GuestID, checkin.CheckinDate); err != nil {
		return nil, err
	}
	if err := s.ensureFreeNight(ctx, facilityID, payload.GuestID, checkin.CheckinDate, checkin.ID); err != nil {
		return nil, err
	}

	checkin.Assign(payload.GuestID, payload.Details)
	if err := s.checkins.AssignIfAvailable(ctx, checkin); err != nil {
		return nil, err
	}

	s.notifier.publish(ctx, entities.NewCheckinEvent(facilityID, entities.CheckinEventTypeAssigned, &checkin.CheckinDate, payload.GuestID, checkin.ID))
	return checkin, nil
}

// Deassign returns an occupied mat to the available state and clears its
// details. Deassigning an available mat is rejected.
func (s *CheckinService) Deassign(ctx context.Context, facilityID, checkinID string) (_ *entities.Checkin, err error) {
	ctx, done := s.trace(ctx, "deassign", facilityID)
	defer done(&err)

	checkin, err := s.checkinInFacility(ctx, facilityID, checkinID)
	if err != nil {
		return nil, err
	}
	if checkin.IsAvailable() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("checkin %s is not occupied", checkin.ID)).WithField("checkin_id")
	}

	guestID := *checkin.GuestID
	if err := s.checkins.ClearIfHeldBy(ctx, checkin.ID, guestID); err != nil {
		return nil, err
	}
	checkin.ClearAssignment()

	s.notifier.publish(ctx, entities.NewCheckinEvent(facilityID, entities.CheckinEventTypeDeassigned, &checkin.CheckinDate, guestID, checkin.ID))
	return checkin, nil
}

// Reassign moves the guest on sourceID to the available mat
// payload.CheckinID on the same night. The source is cleared before the
// destination is written, both inside one transaction.
func (s *CheckinService) Reassign(ctx context.Context, facilityID, sourceID string, payload ReassignPayload) (_ *entities.Checkin, err error) {
	ctx, done := s.trace(ctx, "reassign", facilityID)
	defer done(&err)

	source, err := s.checkinInFacility(ctx, facilityID, sourceID)
	if err != nil {
		return nil, err
	}
	if source.IsAvailable() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("checkin %s is not occupied", source.ID)).WithField("checkin_id")
	}
	guestID := *source.GuestID

	if payload.CheckinID == "" {
		return nil, apperrors.NewBadRequestError("destination checkin id is required").WithField("checkin_id")
	}
	if payload.CheckinID == source.ID {
		return nil, apperrors.NewBadRequestError("destination must differ from the source checkin").WithField("checkin_id")
	}
	if payload.GuestID != nil && *payload.GuestID != guestID {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf(
			"checkin %s is held by guest %s, not %s", source.ID, guestID, *payload.GuestID,
		)).WithField("guest_id")
	}

	dest, err := s.checkinInFacility(ctx, facilityID, payload.CheckinID)
	if err != nil {
		return nil, err
	}
	if !dest.CheckinDate.Equal(source.CheckinDate) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf(
			"destination checkin %s is on %s, not %s", dest.ID, dest.CheckinDate, source.CheckinDate,
		)).WithField("checkin_id")
	}
	if !dest.IsAvailable() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("destination checkin %s is already occupied", dest.ID)).WithField("checkin_id")
	}
	if err := payload.Details.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureNotBanned(ctx, guestID, dest.CheckinDate); err != nil {
		return nil, err
	}

	details := source.Details.Overlay(payload.Details)
	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx repositories.TxRepositories) error {
		if err := tx.Checkins().ClearIfHeldBy(ctx, source.ID, guestID); err != nil {
			return err
		}
		dest.Assign(guestID, details)
		return tx.Checkins().AssignIfAvailable(ctx, dest)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.publish(ctx, entities.NewCheckinEvent(facilityID, entities.CheckinEventTypeReassigned, &dest.CheckinDate, guestID, source.ID, dest.ID))
	return dest, nil
}

// Update sets the detail fields present in details on an occupied mat.
// Nil fields keep their current value. The guest is never changed.
func (s *CheckinService) Update(ctx context.Context, facilityID, checkinID string, details entities.Details) (_ *entities.Checkin, err error) {
	ctx, done := s.trace(ctx, "update", facilityID)
	defer done(&err)

	checkin, err := s.checkinInFacility(ctx, facilityID, checkinID)
	if err != nil {
		return nil, err
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if checkin.IsAvailable() {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf(
			"checkin %s is not occupied; details can only be set on an occupied mat", checkin.ID,
		)).WithField("checkin_id")
	}

	checkin.Details = checkin.Details.Overlay(details)
	if err := s.checkins.UpdateDetails(ctx, checkin); err != nil {
		return nil, err
	}

	s.notifier.publish(ctx, entities.NewCheckinEvent(facilityID, entities.CheckinEventTypeUpdated, &checkin.CheckinDate, *checkin.GuestID, checkin.ID))
	return checkin, nil
}

func checkinIDs(checkins []*entities.Checkin) []string {
	ids := make([]string, len(checkins))
	for i, c := range checkins {
		ids[i] = c.ID
	}
	return ids
}
