package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// lookups resolves the records an operation refers to and checks that they
// belong to the caller's facility. Every check runs before any write.
type lookups struct {
	facilities repositories.FacilityRepository
	templates  repositories.TemplateRepository
	guests     repositories.GuestRepository
	bans       repositories.BanRepository
	checkins   repositories.CheckinRepository
}

func (l *lookups) facility(ctx context.Context, facilityID string) (*entities.Facility, error) {
	if strings.TrimSpace(facilityID) == "" {
		return nil, apperrors.NewBadRequestError("facility id is required").WithField("facility_id")
	}
	return l.facilities.GetByID(ctx, facilityID)
}

// A record from another facility is reported as missing so ids cannot be
// probed across tenants.
func (l *lookups) guestInFacility(ctx context.Context, facilityID, guestID string) (*entities.Guest, error) {
	if strings.TrimSpace(guestID) == "" {
		return nil, apperrors.NewBadRequestError("guest id is required").WithField("guest_id")
	}
	guest, err := l.guests.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if guest.FacilityID != facilityID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("guest with id %s not found", guestID)).WithField("guest_id")
	}
	return guest, nil
}

func (l *lookups) templateInFacility(ctx context.Context, facilityID, templateID string) (*entities.Template, error) {
	if strings.TrimSpace(templateID) == "" {
		return nil, apperrors.NewBadRequestError("template id is required").WithField("template_id")
	}
	template, err := l.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if template.FacilityID != facilityID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("template with id %s not found", templateID)).WithField("template_id")
	}
	return template, nil
}

func (l *lookups) checkinInFacility(ctx context.Context, facilityID, checkinID string) (*entities.Checkin, error) {
	if strings.TrimSpace(checkinID) == "" {
		return nil, apperrors.NewBadRequestError("checkin id is required").WithField("checkin_id")
	}
	checkin, err := l.checkins.GetByID(ctx, checkinID)
	if err != nil {
		return nil, err
	}
	if checkin.FacilityID != facilityID {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("checkin with id %s not found", checkinID)).WithField("checkin_id")
	}
	return checkin, nil
}

// ensureNotBanned rejects a guest with an active ban covering date
func (l *lookups) ensureNotBanned(ctx context.Context, guestID string, date entities.Date) error {
	bans, err := l.bans.ListActiveCovering(ctx, guestID, date)
	if err != nil {
		return err
	}
	for _, ban := range bans {
		if ban.Covers(date) {
			return apperrors.NewBadRequestError(fmt.Sprintf(
				"guest %s is banned from %s to %s (ban %s)", guestID, ban.FromDate, ban.ToDate, ban.ID,
			)).WithField("guest_id")
		}
	}
	return nil
}

// ensureFreeNight rejects a guest already occupying a mat other than
// exceptID at the facility on date
func (l *lookups) ensureFreeNight(ctx context.Context, facilityID, guestID string, date entities.Date, exceptID string) error {
	other, err := l.checkins.FindByGuestDate(ctx, facilityID, guestID, date)
	if err != nil {
		return err
	}
	if other != nil && other.ID != exceptID {
		return apperrors.NewConflictError(fmt.Sprintf(
			"guest %s already occupies mat %d on %s (checkin %s)", guestID, other.MatNumber, date, other.ID,
		)).WithField("guest_id")
	}
	return nil
}
