package qrcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one JSON-encoded token per session under a TTL'd key.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a TokenStore backed by Redis.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func tokenKey(sessionID string) string {
	return fmt.Sprintf("qrcode:session:%s", sessionID)
}

func (s *RedisStore) Set(ctx context.Context, token *Token, ttl time.Duration) error {
	blob, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, tokenKey(token.SessionID), blob, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Token, error) {
	blob, err := s.client.Get(ctx, tokenKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var token Token
	if err := json.Unmarshal(blob, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, tokenKey(sessionID)).Err()
}

func (s *RedisStore) TTL(ctx context.Context, sessionID string) (time.Duration, bool, error) {
	ttl, err := s.client.TTL(ctx, tokenKey(sessionID)).Result()
	if err != nil {
		return 0, false, err
	}
	// -2 means the key does not exist, -1 means no expiry is set.
	if ttl < 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}
