package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key contract. The keys must stay stable within a process so eager
// invalidation always hits the entries the read path populated.
const (
	keyBase          = "scoring:base"
	keyDashboardTop  = "scoring:dashboard:top"
	keyDashboardFull = "scoring:dashboard:full"
	keyPOIRanking    = "scoring:poi_ranking"
)

var allKeys = []string{keyBase, keyDashboardTop, keyDashboardFull, keyPOIRanking}

// ErrCacheMiss is returned by a Store when a key has no value.
var ErrCacheMiss = errors.New("cache miss")

// Store is the explicit cache abstraction the scoring service reads through.
// Implementations may fail; callers treat any Get failure as a miss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore wraps a redis client as a scoring cache Store.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return val, err
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}
