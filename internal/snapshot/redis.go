package snapshot

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"khakhra/backend/internal/domain"
)

// RedisStore keeps the snapshot in a single Redis value under StorageKey.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStore{client: client}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	val, err := s.client.Get(ctx, StorageKey).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (s *RedisStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	// TTL 0: the snapshot is the system of record for this slot, not a cache.
	return s.client.Set(ctx, StorageKey, payload, 0).Err()
}
