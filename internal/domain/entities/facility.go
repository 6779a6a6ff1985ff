package entities

import "time"

// Facility is the tenant boundary: guests, templates and checkins all
// belong to exactly one facility. Name and Scope are unique.
type Facility struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Scope     string    `json:"scope" db:"scope"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
