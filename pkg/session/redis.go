package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage scopes the session keys under a per-client prefix and lets
// them expire after ttl, renewed on every write.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func NewRedisClient(addr, pass string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
	})
}

func (rs *RedisStorage) key(k string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, k)
}

func (rs *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := rs.client.Get(ctx, rs.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (rs *RedisStorage) Set(ctx context.Context, key, value string) error {
	return rs.client.Set(ctx, rs.key(key), value, rs.ttl).Err()
}

func (rs *RedisStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = rs.key(k)
	}
	return rs.client.Del(ctx, full...).Err()
}
