package ratelimit

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each window as a sorted set scored by request time in
// nanoseconds. Store-level TTL equal to the window handles cleanup of idle
// keys; no explicit deletion is needed on the happy path.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Store backed by a Redis sorted set per key.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) PruneAndCount(ctx context.Context, key string, windowStart time.Time) (int64, error) {
	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return count.Val(), nil
}

func (s *RedisStore) Record(ctx context.Context, key string, ts time.Time, window time.Duration) error {
	// Random suffix keeps concurrent requests with identical timestamps
	// from collapsing into one member.
	member := fmt.Sprintf("%d-%04d", ts.UnixNano(), rand.Intn(10000))

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(ts.UnixNano()), Member: member})
	pipe.Expire(ctx, key, window)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) OldestTimestamp(ctx context.Context, key string) (time.Time, bool, error) {
	entries, err := s.client.ZRangeWithScores(ctx, key, 0, 0).Result()
	if err != nil {
		return time.Time{}, false, err
	}
	if len(entries) == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(0, int64(entries[0].Score)), true, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
