package repositories

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

// TemplateRepository looks up mat layout templates
type TemplateRepository interface {
	// Create creates a new template
	Create(ctx context.Context, template *entities.Template) error

	// GetByID retrieves a template by ID
	GetByID(ctx context.Context, id string) (*entities.Template, error)
}
