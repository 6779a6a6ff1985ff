package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/repositories"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/clients/postgres"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// TemplateAdapter implements the TemplateRepository interface
type TemplateAdapter struct {
	db sqlx.ExtContext
}

// NewTemplateAdapter creates a new template adapter
func NewTemplateAdapter(client *postgres.Client) repositories.TemplateRepository {
	return &TemplateAdapter{db: client.DB()}
}

// Create creates a new template
func (a *TemplateAdapter) Create(ctx context.Context, template *entities.Template) error {
	query, args, err := dialect.Insert("templates").Rows(goqu.Record{
		"id":            template.ID,
		"facility_id":   template.FacilityID,
		"name":          template.Name,
		"all_mats":      template.AllMats,
		"handicap_mats": template.HandicapMats,
		"socket_mats":   template.SocketMats,
		"work_mats":     template.WorkMats,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return writeError(err, "create template")
	}
	return nil
}

// GetByID retrieves a template by ID
func (a *TemplateAdapter) GetByID(ctx context.Context, id string) (*entities.Template, error) {
	query, args, err := dialect.From("templates").
		Select("id", "facility_id", "name", "all_mats", "handicap_mats", "socket_mats", "work_mats").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	template := &entities.Template{}
	err = sqlx.GetContext(ctx, a.db, template, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("template with id %s not found", id)).WithField("template_id")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get template", err)
	}
	return template, nil
}
