package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

type chanBus struct {
	channel string
	events  chan *entities.CheckinEvent
}

func (b *chanBus) Publish(context.Context, string, *entities.CheckinEvent) error { return nil }

func (b *chanBus) Subscribe(_ context.Context, channel string) (<-chan *entities.CheckinEvent, error) {
	b.channel = channel
	return b.events, nil
}

func (b *chanBus) Close() error { return nil }

func TestTail(t *testing.T) {
	date := entities.NewDate(2024, 2, 1)
	bus := &chanBus{events: make(chan *entities.CheckinEvent, 2)}
	bus.events <- &entities.CheckinEvent{
		FacilityID:  "F",
		EventType:   entities.CheckinEventTypeAssigned,
		CheckinDate: &date,
		GuestID:     "A",
		CheckinIDs:  []string{"c1"},
		Timestamp:   time.Date(2024, 2, 1, 21, 30, 0, 0, time.UTC),
	}
	close(bus.events)

	var out bytes.Buffer
	require.NoError(t, tail(context.Background(), bus, "F", &out))

	assert.Equal(t, "checkins:facility:F", bus.channel)
	assert.Contains(t, out.String(), "21:30:00")
	assert.Contains(t, out.String(), "2024-02-01 guest=A checkins=c1")
}

func TestTail_StopsOnCancel(t *testing.T) {
	bus := &chanBus{events: make(chan *entities.CheckinEvent)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	assert.NoError(t, tail(ctx, bus, "F", &out))
	assert.Empty(t, out.String())
}

func TestNights(t *testing.T) {
	got := nights(entities.NewDate(2024, 2, 28), 3)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-02-28", got[0].String())
	assert.Equal(t, "2024-02-29", got[1].String())
	assert.Equal(t, "2024-03-01", got[2].String())
}
