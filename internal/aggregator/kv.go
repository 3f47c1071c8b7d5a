package aggregator

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss key 不存在或已过期
var ErrCacheMiss = errors.New("cache miss")

// KVStore 响应缓存后端, 值为编码好的响应体
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisKVStore go-redis 实现; ttl 为 0 表示不过期
type RedisKVStore struct {
	client *redis.Client
}

var _ KVStore = (*RedisKVStore)(nil)

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

func (r *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, ErrCacheMiss
	case err != nil:
		return nil, err
	}
	return val, nil
}

func (r *RedisKVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
