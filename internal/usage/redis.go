package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists usage records in Redis, for shared deployments that
// already run one. Records are small JSON values under the fixed storage key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func redisKey(clientID string) string {
	return StorageKey + ":" + clientID
}

func (s *RedisStore) Load(ctx context.Context, clientID string) (Record, bool, error) {
	data, err := s.client.Get(ctx, redisKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("load usage: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Treat a corrupt value as absent rather than blocking audio.
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (s *RedisStore) Save(ctx context.Context, clientID string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode usage: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(clientID), data, 0).Err(); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
