package entities

import (
	"time"

	"github.com/google/uuid"
)

// CheckinEventType represents the type of checkin event
type CheckinEventType string

const (
	CheckinEventTypeGenerated  CheckinEventType = "checkins_generated"
	CheckinEventTypeCleared    CheckinEventType = "checkins_cleared"
	CheckinEventTypeAssigned   CheckinEventType = "checkin_assigned"
	CheckinEventTypeDeassigned CheckinEventType = "checkin_deassigned"
	CheckinEventTypeReassigned CheckinEventType = "checkin_reassigned"
	CheckinEventTypeUpdated    CheckinEventType = "checkin_updated"
	CheckinEventTypeGuestMerge CheckinEventType = "guests_merged"
)

// CheckinEvent announces a change to a facility's night layout
type CheckinEvent struct {
	ID          string           `json:"id"`
	FacilityID  string           `json:"facility_id"`
	EventType   CheckinEventType `json:"event_type"`
	CheckinDate *Date            `json:"checkin_date,omitempty"`
	CheckinIDs  []string         `json:"checkin_ids,omitempty"`
	GuestID     string           `json:"guest_id,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}

// NewCheckinEvent creates a new checkin event
func NewCheckinEvent(facilityID string, eventType CheckinEventType, date *Date, guestID string, checkinIDs ...string) *CheckinEvent {
	return &CheckinEvent{
		ID:          uuid.NewString(),
		FacilityID:  facilityID,
		EventType:   eventType,
		CheckinDate: date,
		CheckinIDs:  checkinIDs,
		GuestID:     guestID,
		Timestamp:   time.Now().UTC(),
	}
}
