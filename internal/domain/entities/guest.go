package entities

import "time"

// Guest is a person staying at a facility, unique per
// (facility, first name, last name).
type Guest struct {
	ID         string     `json:"id" db:"id"`
	FacilityID string     `json:"facility_id" db:"facility_id"`
	FirstName  string     `json:"first_name" db:"first_name"`
	LastName   string     `json:"last_name" db:"last_name"`
	Birthdate  *Date      `json:"birthdate,omitempty" db:"birthdate"`
	Notes      *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	Checkins   []*Checkin `json:"checkins,omitempty" db:"-"`
}
