package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DialRedis creates a Redis client and checks that the server answers.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", addr, err)
	}
	return client, nil
}

// RedisStore keeps blobs as plain Redis strings under a common key prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a Store backed by client.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get returns the blob stored under key, or nil if there is none.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting blob %s: %w", key, err)
	}
	return value, nil
}

// Has reports whether a blob is stored under key.
func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("checking blob %s: %w", key, err)
	}
	return n > 0, nil
}

// Put writes all entries in one MULTI/EXEC transaction.
func (s *RedisStore) Put(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			if e.Value == nil {
				pipe.Del(ctx, s.prefix+e.Key)
			} else {
				pipe.Set(ctx, s.prefix+e.Key, e.Value, 0)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing blobs: %w", err)
	}
	return nil
}
