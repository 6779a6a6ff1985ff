package entities

import "time"

// Ban keeps a guest from being assigned a mat between FromDate and ToDate,
// inclusive, while Active is set.
type Ban struct {
	ID         string    `json:"id" db:"id"`
	FacilityID string    `json:"facility_id" db:"facility_id"`
	GuestID    string    `json:"guest_id" db:"guest_id"`
	FromDate   Date      `json:"from_date" db:"from_date"`
	ToDate     Date      `json:"to_date" db:"to_date"`
	Active     bool      `json:"active" db:"active"`
	Reason     *string   `json:"reason,omitempty" db:"reason"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Covers reports whether the ban is active on date
func (b *Ban) Covers(date Date) bool {
	return b.Active && !date.Before(b.FromDate) && !date.After(b.ToDate)
}
