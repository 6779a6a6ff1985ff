package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/postgres"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// BanAdapter implements the BanRepository interface
type BanAdapter struct {
	db sqlx.ExtContext
}

// NewBanAdapter creates a new ban adapter
func NewBanAdapter(client *postgres.Client) repositories.BanRepository {
	return &BanAdapter{db: client.DB()}
}

// Create creates a new ban
func (a *BanAdapter) Create(ctx context.Context, ban *entities.Ban) error {
	if ban.ToDate.Before(ban.FromDate) {
		return apperrors.NewBadRequestError("ban ends before it starts").WithField("to_date")
	}
	ban.CreatedAt = time.Now().UTC()

	query, args, err := dialect.Insert("bans").Rows(goqu.Record{
		"id":          ban.ID,
		"facility_id": ban.FacilityID,
		"guest_id":    ban.GuestID,
		"from_date":   ban.FromDate.String(),
		"to_date":     ban.ToDate.String(),
		"active":      ban.Active,
		"reason":      nullable(ban.Reason),
		"created_at":  ban.CreatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return writeError(err, "create ban")
	}
	return nil
}

// ListActiveCovering returns the guest's active bans whose range includes date
func (a *BanAdapter) ListActiveCovering(ctx context.Context, guestID string, date entities.Date) ([]*entities.Ban, error) {
	query, args, err := dialect.From("bans").
		Select("id", "facility_id", "guest_id", "from_date", "to_date", "active", "reason", "created_at").
		Where(
			goqu.Ex{"guest_id": guestID, "active": true},
			goqu.C("from_date").Lte(date.String()),
			goqu.C("to_date").Gte(date.String()),
		).
		Order(goqu.I("from_date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var bans []*entities.Ban
	if err := sqlx.SelectContext(ctx, a.db, &bans, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list bans", err)
	}
	return bans, nil
}

// MoveToGuest rewrites every ban of fromGuestID to toGuestID
func (a *BanAdapter) MoveToGuest(ctx context.Context, fromGuestID, toGuestID string) (int64, error) {
	query, args, err := dialect.Update("bans").
		Set(goqu.Record{"guest_id": toGuestID}).
		Where(goqu.Ex{"guest_id": fromGuestID}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to move bans", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected, nil
}
