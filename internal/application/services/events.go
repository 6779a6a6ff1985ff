package services

import (
	"context"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	"github.com/shelterbeds/matcheckin/internal/infrastructure/observability"
)

// notifier publishes checkin events after a mutation has committed.
// A nil bus disables publishing.
type notifier struct {
	bus providers.EventBus
}

func (n *notifier) publish(ctx context.Context, event *entities.CheckinEvent) {
	if n.bus == nil {
		return
	}
	channel := providers.GetFacilityChannel(event.FacilityID)
	if err := n.bus.Publish(ctx, channel, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("channel", channel).
			Str("event_type", string(event.EventType)).
			Msg("failed to publish checkin event")
	}
}
