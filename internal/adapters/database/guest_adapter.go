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

var guestColumns = []interface{}{
	"id", "facility_id", "first_name", "last_name", "birthdate", "notes", "created_at", "updated_at",
}

// GuestAdapter implements the GuestRepository interface
type GuestAdapter struct {
	db sqlx.ExtContext
}

// NewGuestAdapter creates a new guest adapter
func NewGuestAdapter(client *postgres.Client) repositories.GuestRepository {
	return &GuestAdapter{db: client.DB()}
}

// Create creates a new guest
func (a *GuestAdapter) Create(ctx context.Context, guest *entities.Guest) error {
	now := time.Now().UTC()
	guest.CreatedAt, guest.UpdatedAt = now, now

	var birthdate interface{}
	if guest.Birthdate != nil {
		birthdate = guest.Birthdate.String()
	}

	query, args, err := dialect.Insert("guests").Rows(goqu.Record{
		"id":          guest.ID,
		"facility_id": guest.FacilityID,
		"first_name":  guest.FirstName,
		"last_name":   guest.LastName,
		"birthdate":   birthdate,
		"notes":       nullable(guest.Notes),
		"created_at":  guest.CreatedAt,
		"updated_at":  guest.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return writeError(err, "create guest")
	}
	return nil
}

// GetByID retrieves a guest by ID, without checkins
func (a *GuestAdapter) GetByID(ctx context.Context, id string) (*entities.Guest, error) {
	query, args, err := dialect.From("guests").
		Select(guestColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	guest := &entities.Guest{}
	err = sqlx.GetContext(ctx, a.db, guest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("guest with id %s not found", id)).WithField("guest_id")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get guest", err)
	}
	return guest, nil
}

// Delete removes a guest
func (a *GuestAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := dialect.Delete("guests").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete guest", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("guest with id %s not found", id)).WithField("guest_id")
	}
	return nil
}
