package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	redisclient "github.com/shelterbeds/matcheckin/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 64

// RedisEventBus implements providers.EventBus with Redis Pub/Sub. Each
// Subscribe call gets its own PubSub connection, closed when the caller's
// context ends or the bus is closed.
type RedisEventBus struct {
	client *redis.Client

	mu     sync.Mutex
	subs   map[*redis.PubSub]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	return newRedisEventBus(client.Client())
}

func newRedisEventBus(client *redis.Client) *RedisEventBus {
	return &RedisEventBus{
		client: client,
		subs:   make(map[*redis.PubSub]struct{}),
	}
}

// Publish sends event to channel as JSON
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.CheckinEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Msg("published checkin event")
	return nil
}

// Subscribe streams events from channel until ctx is done. Events are
// dropped for a subscriber that falls more than subscriberBuffer behind.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.CheckinEvent, error) {
	if b.isClosed() {
		return nil, fmt.Errorf("event bus is closed")
	}

	// The lock is not held while talking to redis so Close never waits on a dial.
	pubsub := b.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = pubsub.Close()
		return nil, fmt.Errorf("event bus is closed")
	}
	b.subs[pubsub] = struct{}{}
	b.wg.Add(1)
	b.mu.Unlock()

	out := make(chan *entities.CheckinEvent, subscriberBuffer)
	go b.pump(ctx, channel, pubsub, out)

	return out, nil
}

func (b *RedisEventBus) pump(ctx context.Context, channel string, pubsub *redis.PubSub, out chan<- *entities.CheckinEvent) {
	defer b.wg.Done()
	defer close(out)
	defer b.release(pubsub)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			event := &entities.CheckinEvent{}
			if err := json.Unmarshal([]byte(msg.Payload), event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("dropping malformed checkin event")
				continue
			}

			select {
			case out <- event:
			default:
				log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber is behind, dropping event")
			}
		}
	}
}

func (b *RedisEventBus) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *RedisEventBus) release(pubsub *redis.PubSub) {
	b.mu.Lock()
	delete(b.subs, pubsub)
	b.mu.Unlock()
	_ = pubsub.Close()
}

// Close closes every open subscription and waits for their goroutines
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	b.closed = true
	subs := make([]*redis.PubSub, 0, len(b.subs))
	for pubsub := range b.subs {
		subs = append(subs, pubsub)
	}
	b.mu.Unlock()

	for _, pubsub := range subs {
		_ = pubsub.Close()
	}
	b.wg.Wait()

	log.Info().Int("subscriptions", len(subs)).Msg("event bus closed")
	return nil
}
