package database

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/postgres"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// dialect builds postgres SQL; statements run on either a *sqlx.DB or *sqlx.Tx
var dialect = goqu.Dialect("postgres")

// nullable unwraps p for goqu so that nil becomes SQL NULL
func nullable[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// writeError converts a failed INSERT or UPDATE into an AppError
func writeError(err error, what string) error {
	if constraint, ok := postgres.IsUniqueViolation(err); ok {
		switch constraint {
		case postgres.ConstraintCheckinSlot:
			return apperrors.NewConflictError("a checkin already exists for this facility, date and mat").WithField("mat_number")
		case postgres.ConstraintCheckinGuestNight:
			return apperrors.NewConflictError("guest already occupies another mat on this date").WithField("guest_id")
		default:
			return apperrors.NewConflictError(fmt.Sprintf("%s violates unique constraint %s", what, constraint))
		}
	}
	return apperrors.NewInternalError(fmt.Sprintf("failed to %s", what), err)
}
