package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisState keeps every key under a common prefix so several deployments can share one db.
type RedisState struct {
	client *redis.Client
	prefix string
}

// NewRedisState creates a new store backed by Redis.
func NewRedisState(addr, password string, db int, prefix string) *RedisState {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisState{client: rdb, prefix: prefix}
}

func (s *RedisState) key(k string) string {
	return s.prefix + k
}

// Ping checks connectivity, used at startup.
func (s *RedisState) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisState) Get(ctx context.Context, key string) (*string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return &val, nil
}

func (s *RedisState) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisState) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Apply wraps the mutations in MULTI/EXEC.
func (s *RedisState) Apply(ctx context.Context, muts []Mutation) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range muts {
			if m.Value == nil {
				pipe.Del(ctx, s.key(m.Key))
			} else {
				pipe.Set(ctx, s.key(m.Key), *m.Value, 0)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis apply: %w", err)
	}
	return nil
}

func (s *RedisState) Close() error {
	return s.client.Close()
}
