package providers

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to checkin events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.CheckinEvent) error

	// Subscribe subscribes to events on a channel until ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.CheckinEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelFacilityPrefix is the prefix for facility-specific channels
const EventChannelFacilityPrefix = "checkins:facility:"

// GetFacilityChannel returns the channel name for a specific facility
func GetFacilityChannel(facilityID string) string {
	return EventChannelFacilityPrefix + facilityID
}
