package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStore(t *testing.T) {
	redisServer := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	if _, err := store.Get(ctx, keyBase); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected cache miss, got %v", err)
	}

	if err := store.Set(ctx, keyBase, []byte(`{"active_badges":null}`), 300*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := store.Get(ctx, keyBase)
	if err != nil || string(val) != `{"active_badges":null}` {
		t.Fatalf("get after set: %v %q", err, val)
	}

	if err := store.Del(ctx, allKeys...); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := store.Get(ctx, keyBase); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestRedisStoreTTL(t *testing.T) {
	redisServer := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, keyDashboardTop, []byte(`{}`), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}
	redisServer.FastForward(2 * time.Second)

	if _, err := store.Get(ctx, keyDashboardTop); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss after ttl expiry, got %v", err)
	}
}
