// Package events carries domain mutation events between the write paths and
// the scoring cache. Events are dispatched in-process and, when redis is
// configured, published so sibling processes invalidate their caches too.
package events

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const Channel = "odznaki:mutations"

const (
	KindVisit            = "visit"
	KindBadge            = "badge"
	KindBadgeRequirement = "badge_requirement"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type Event struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

type Bus struct {
	redis    *redis.Client
	mu       sync.RWMutex
	handlers []func(Event)
}

func NewBus(redisClient *redis.Client) *Bus {
	b := &Bus{redis: redisClient}
	if redisClient != nil {
		go b.subscribeRedis()
	}
	return b
}

// OnMutation registers a handler called for every event, local or remote.
// Handlers must be idempotent: a locally published event also comes back
// through the redis subscription.
func (b *Bus) OnMutation(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
}

// Publish dispatches the event to local handlers and to the redis channel.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.dispatch(event)

	if b.redis != nil {
		payload, _ := json.Marshal(event)
		if err := b.redis.Publish(ctx, Channel, payload).Err(); err != nil {
			log.Printf("event publish error: %v", err)
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}

func (b *Bus) subscribeRedis() {
	pubsub := b.redis.Subscribe(context.Background(), Channel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("event decode error: %v", err)
			continue
		}
		b.dispatch(event)
	}
}
