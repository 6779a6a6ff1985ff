package entities

import (
	"errors"

	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
	"github.com/shelterbeds/matcheckin/pkg/mats"
)

// Template is a reusable mat layout used to generate a night's checkins
type Template struct {
	ID           string `json:"id" db:"id"`
	FacilityID   string `json:"facility_id" db:"facility_id"`
	Name         string `json:"name" db:"name"`
	AllMats      string `json:"all_mats" db:"all_mats"`
	HandicapMats string `json:"handicap_mats,omitempty" db:"handicap_mats"`
	SocketMats   string `json:"socket_mats,omitempty" db:"socket_mats"`
	WorkMats     string `json:"work_mats,omitempty" db:"work_mats"`
}

// Validate checks that AllMats parses and every feature list is a subset of it
func (t *Template) Validate() error {
	if _, err := mats.Expand(t.AllMats); err != nil {
		return fieldError(err, "all_mats")
	}
	lists := []struct{ field, spec string }{
		{"handicap_mats", t.HandicapMats},
		{"socket_mats", t.SocketMats},
		{"work_mats", t.WorkMats},
	}
	for _, l := range lists {
		if err := mats.Subset(t.AllMats, l.spec); err != nil {
			return fieldError(err, l.field)
		}
	}
	return nil
}

// Layout expands the template into mats and their feature tags
func (t *Template) Layout() (*mats.Layout, error) {
	return mats.Features(t.AllMats, t.HandicapMats, t.SocketMats, t.WorkMats)
}

func fieldError(err error, field string) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.WithField(field)
	}
	return err
}
