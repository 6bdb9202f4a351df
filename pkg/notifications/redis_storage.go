package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps each notification as a JSON blob plus a per-tenant
// sorted-set index scored by creation time. Blobs with an expiry carry a
// matching store-level TTL; index entries whose blob has been evicted are
// pruned lazily during reads.
type RedisStorage struct {
	client redis.UniversalClient
}

// NewRedisStorage creates a Storage backed by Redis.
func NewRedisStorage(client redis.UniversalClient) *RedisStorage {
	return &RedisStorage{client: client}
}

func notificationKey(tenantID, id string) string {
	return fmt.Sprintf("notifications:%s:%s", tenantID, id)
}

func indexKey(tenantID string) string {
	return fmt.Sprintf("notifications:index:%s", tenantID)
}

func prefsKey(tenantID, userID string) string {
	return fmt.Sprintf("notifications:prefs:%s:%s", tenantID, userID)
}

func (s *RedisStorage) Create(ctx context.Context, n Notification) error {
	blob, err := json.Marshal(n)
	if err != nil {
		return err
	}

	ttl := time.Duration(0)
	if n.ExpiresAt != nil {
		ttl = time.Until(*n.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, notificationKey(n.TenantID, n.ID), blob, ttl)
	pipe.ZAdd(ctx, indexKey(n.TenantID), redis.Z{
		Score:  float64(n.Timestamp.UnixNano()),
		Member: n.ID,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStorage) Get(ctx context.Context, tenantID, id string) (*Notification, error) {
	blob, err := s.client.Get(ctx, notificationKey(tenantID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var n Notification
	if err := json.Unmarshal(blob, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *RedisStorage) Update(ctx context.Context, n Notification) error {
	blob, err := json.Marshal(n)
	if err != nil {
		return err
	}
	// KeepTTL preserves the expiry set at creation time.
	return s.client.Set(ctx, notificationKey(n.TenantID, n.ID), blob, redis.KeepTTL).Err()
}

func (s *RedisStorage) List(ctx context.Context, tenantID string, opts ListOptions) ([]Notification, error) {
	ids, err := s.client.ZRevRange(ctx, indexKey(tenantID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Notification{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = notificationKey(tenantID, id)
	}
	blobs, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	matched := make([]Notification, 0, len(blobs))
	var evicted []any
	for i, raw := range blobs {
		if raw == nil {
			// Blob expired out from under the index.
			evicted = append(evicted, ids[i])
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}

		var n Notification
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			continue
		}
		if opts.Matches(&n) {
			matched = append(matched, n)
		}
	}

	if len(evicted) > 0 {
		_ = s.client.ZRem(ctx, indexKey(tenantID), evicted...).Err()
	}

	return page(matched, opts.Offset, opts.Limit), nil
}

func (s *RedisStorage) CountUnread(ctx context.Context, tenantID, userID string) (int, error) {
	rows, err := s.List(ctx, tenantID, ListOptions{UserID: userID, UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// page applies offset/limit to an already-filtered slice.
func page(rows []Notification, offset, limit int) []Notification {
	if offset >= len(rows) {
		return []Notification{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// RedisPreferenceStore keeps one JSON preferences row per (tenant, user).
type RedisPreferenceStore struct {
	client redis.UniversalClient
}

// NewRedisPreferenceStore creates a PreferenceStore backed by Redis.
func NewRedisPreferenceStore(client redis.UniversalClient) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client}
}

func (s *RedisPreferenceStore) Get(ctx context.Context, tenantID, userID string) (Preferences, error) {
	blob, err := s.client.Get(ctx, prefsKey(tenantID, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		// First access: materialize and persist the default row.
		defaults := DefaultPreferences()
		if err := s.Set(ctx, tenantID, userID, defaults); err != nil {
			return defaults, err
		}
		return defaults, nil
	}
	if err != nil {
		return Preferences{}, err
	}

	var prefs Preferences
	if err := json.Unmarshal(blob, &prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

func (s *RedisPreferenceStore) Set(ctx context.Context, tenantID, userID string, prefs Preferences) error {
	blob, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, prefsKey(tenantID, userID), blob, 0).Err()
}
