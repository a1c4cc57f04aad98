package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps state as JSON strings so several server instances share it.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// OpenRedis parses a redis:// URL and checks the server answers.
func OpenRedis(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

func (r *RedisStore) Get(ctx context.Context, tableID, clientKey string) (*State, error) {
	data, err := r.client.Get(ctx, storeKey(tableID, clientKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read table state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode table state: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Put(ctx context.Context, tableID, clientKey string, s *State) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode table state: %w", err)
	}
	if err := r.client.Set(ctx, storeKey(tableID, clientKey), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write table state: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, tableID, clientKey string) error {
	if err := r.client.Del(ctx, storeKey(tableID, clientKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete table state: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
