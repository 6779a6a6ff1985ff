package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/postgres"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

var checkinColumns = []interface{}{
	"id", "facility_id", "checkin_date", "mat_number", "guest_id", "features",
	"comments", "payment_type", "payment_amount", "shower_time", "wakeup_time",
	"created_at", "updated_at",
}

// CheckinAdapter implements the CheckinRepository interface
type CheckinAdapter struct {
	db sqlx.ExtContext
}

// NewCheckinAdapter creates a new checkin adapter
func NewCheckinAdapter(client *postgres.Client) repositories.CheckinRepository {
	return &CheckinAdapter{db: client.DB()}
}

func detailsRecord(d entities.Details) goqu.Record {
	var paymentType interface{}
	if d.PaymentType != nil {
		paymentType = string(*d.PaymentType)
	}
	return goqu.Record{
		"comments":       nullable(d.Comments),
		"payment_type":   paymentType,
		"payment_amount": nullable(d.PaymentAmount),
		"shower_time":    nullable(d.ShowerTime),
		"wakeup_time":    nullable(d.WakeupTime),
		"updated_at":     goqu.L("NOW()"),
	}
}

// CreateBatch inserts all checkins in one statement, so either every row
// lands or none does.
func (a *CheckinAdapter) CreateBatch(ctx context.Context, checkins []*entities.Checkin) error {
	if len(checkins) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([]interface{}, 0, len(checkins))
	for _, c := range checkins {
		c.CreatedAt, c.UpdatedAt = now, now
		rows = append(rows, goqu.Record{
			"id":           c.ID,
			"facility_id":  c.FacilityID,
			"checkin_date": c.CheckinDate.String(),
			"mat_number":   c.MatNumber,
			"features":     c.Features,
			"created_at":   c.CreatedAt,
			"updated_at":   c.UpdatedAt,
		})
	}

	query, args, err := dialect.Insert("checkins").Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return writeError(err, "create checkins")
	}
	return nil
}

// GetByID retrieves a checkin by ID
func (a *CheckinAdapter) GetByID(ctx context.Context, id string) (*entities.Checkin, error) {
	query, args, err := dialect.From("checkins").
		Select(checkinColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	checkin := &entities.Checkin{}
	err = sqlx.GetContext(ctx, a.db, checkin, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("checkin with id %s not found", id)).WithField("checkin_id")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get checkin", err)
	}
	return checkin, nil
}

func (a *CheckinAdapter) list(ctx context.Context, where ...goqu.Expression) ([]*entities.Checkin, error) {
	query, args, err := dialect.From("checkins").
		Select(checkinColumns...).
		Where(where...).
		Order(goqu.I("checkin_date").Asc(), goqu.I("mat_number").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	checkins := []*entities.Checkin{}
	if err := sqlx.SelectContext(ctx, a.db, &checkins, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list checkins", err)
	}
	return checkins, nil
}

// ListByFacilityDate returns a night's checkins ordered by mat number
func (a *CheckinAdapter) ListByFacilityDate(ctx context.Context, facilityID string, date entities.Date) ([]*entities.Checkin, error) {
	return a.list(ctx, goqu.Ex{"facility_id": facilityID, "checkin_date": date.String()})
}

// ListByGuest returns every checkin held by a guest
func (a *CheckinAdapter) ListByGuest(ctx context.Context, guestID string) ([]*entities.Checkin, error) {
	return a.list(ctx, goqu.Ex{"guest_id": guestID})
}

// CountByFacilityDate counts a night's checkins
func (a *CheckinAdapter) CountByFacilityDate(ctx context.Context, facilityID string, date entities.Date) (int, error) {
	query, args, err := dialect.From("checkins").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"facility_id": facilityID, "checkin_date": date.String()}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, a.db, &count, query, args...); err != nil {
		return 0, apperrors.NewInternalError("failed to count checkins", err)
	}
	return count, nil
}

// FindByGuestDate returns the checkin a guest occupies on date, or nil
func (a *CheckinAdapter) FindByGuestDate(ctx context.Context, facilityID, guestID string, date entities.Date) (*entities.Checkin, error) {
	query, args, err := dialect.From("checkins").
		Select(checkinColumns...).
		Where(goqu.Ex{"facility_id": facilityID, "guest_id": guestID, "checkin_date": date.String()}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	checkin := &entities.Checkin{}
	err = sqlx.GetContext(ctx, a.db, checkin, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find guest checkin", err)
	}
	return checkin, nil
}

// AssignIfAvailable sets guest and details only while guest_id is still NULL
func (a *CheckinAdapter) AssignIfAvailable(ctx context.Context, checkin *entities.Checkin) error {
	if checkin.GuestID == nil {
		return apperrors.NewBadRequestError("guest is required").WithField("guest_id")
	}

	record := detailsRecord(checkin.Details)
	record["guest_id"] = *checkin.GuestID

	query, args, err := dialect.Update("checkins").
		Set(record).
		Where(goqu.Ex{"id": checkin.ID, "guest_id": nil}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, query, args, "assign checkin",
		apperrors.NewConflictError(fmt.Sprintf("checkin %s is no longer available", checkin.ID)).WithField("checkin_id"))
}

// ClearIfHeldBy empties the mat only while guestID still holds it
func (a *CheckinAdapter) ClearIfHeldBy(ctx context.Context, checkinID, guestID string) error {
	record := detailsRecord(entities.Details{})
	record["guest_id"] = nil

	query, args, err := dialect.Update("checkins").
		Set(record).
		Where(goqu.Ex{"id": checkinID, "guest_id": guestID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, query, args, "clear checkin",
		apperrors.NewConflictError(fmt.Sprintf("checkin %s is no longer held by guest %s", checkinID, guestID)).WithField("checkin_id"))
}

// UpdateDetails writes the detail fields of an occupied checkin
func (a *CheckinAdapter) UpdateDetails(ctx context.Context, checkin *entities.Checkin) error {
	query, args, err := dialect.Update("checkins").
		Set(detailsRecord(checkin.Details)).
		Where(goqu.Ex{"id": checkin.ID}, goqu.C("guest_id").IsNotNull()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, query, args, "update checkin",
		apperrors.NewConflictError(fmt.Sprintf("checkin %s is not assigned", checkin.ID)).WithField("checkin_id"))
}

// execOne runs a single-row conditional update; zero rows means the
// condition no longer held and notMatched is returned.
func (a *CheckinAdapter) execOne(ctx context.Context, query string, args []interface{}, what string, notMatched error) error {
	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return writeError(err, what)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return notMatched
	}
	return nil
}

// DeleteByFacilityDate removes a night's checkins. Nothing is deleted if
// any mat of the night is occupied when the statement runs.
func (a *CheckinAdapter) DeleteByFacilityDate(ctx context.Context, facilityID string, date entities.Date) (int64, error) {
	night := goqu.Ex{"facility_id": facilityID, "checkin_date": date.String()}
	occupied := dialect.From("checkins").
		Select(goqu.L("1")).
		Where(night, goqu.C("guest_id").IsNotNull())

	query, args, err := dialect.Delete("checkins").
		Where(night, goqu.L("NOT EXISTS ?", occupied)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to delete checkins", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected, nil
}

// ReassignGuest moves every checkin of fromGuestID in the facility to toGuestID
func (a *CheckinAdapter) ReassignGuest(ctx context.Context, facilityID, fromGuestID, toGuestID string) (int64, error) {
	query, args, err := dialect.Update("checkins").
		Set(goqu.Record{"guest_id": toGuestID, "updated_at": goqu.L("NOW()")}).
		Where(goqu.Ex{"facility_id": facilityID, "guest_id": fromGuestID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, writeError(err, "reassign guest checkins")
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected, nil
}
