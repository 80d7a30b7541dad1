package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPublishDispatchesLocally(t *testing.T) {
	bus := NewBus(nil)

	var seen []Event
	bus.OnMutation(func(e Event) { seen = append(seen, e) })

	bus.Publish(context.Background(), Event{Kind: KindVisit, Action: ActionCreated, ID: "v-1"})

	if len(seen) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(seen))
	}
	if seen[0].Kind != KindVisit || seen[0].Action != ActionCreated {
		t.Fatalf("unexpected event: %+v", seen[0])
	}
}

func TestPublishMultipleHandlers(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	bus.OnMutation(func(Event) { calls++ })
	bus.OnMutation(func(Event) { calls++ })

	bus.Publish(context.Background(), Event{Kind: KindBadge, Action: ActionDeleted, ID: "b-1"})

	if calls != 2 {
		t.Fatalf("expected both handlers called, got %d", calls)
	}
}

func TestPublishWithoutHandlers(t *testing.T) {
	bus := NewBus(nil)
	// must not panic with no handlers and no redis
	bus.Publish(context.Background(), Event{Kind: KindBadgeRequirement, Action: ActionUpdated, ID: "r-1"})
}

func TestPublishFansOutOverRedis(t *testing.T) {
	redisServer := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	defer client.Close()

	publisher := NewBus(client)

	subClient := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	defer subClient.Close()
	subscriber := NewBus(subClient)

	received := make(chan Event, 1)
	subscriber.OnMutation(func(e Event) { received <- e })

	// Give the subscriber goroutine time to attach before publishing.
	deadline := time.After(2 * time.Second)
	for {
		publisher.Publish(context.Background(), Event{Kind: KindVisit, Action: ActionCreated, ID: "v-1"})
		select {
		case e := <-received:
			if e.Kind != KindVisit || e.ID != "v-1" {
				t.Fatalf("unexpected event: %+v", e)
			}
			return
		case <-deadline:
			t.Fatal("event never arrived over redis")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
