package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sqall01/alertR/alertr-common/config"
)

// 响应缓存只做加速, Redis 慢时宁可直接查数据库
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

// NewRedisClient 创建响应缓存使用的 Redis 客户端
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		MaxRetries:   1,
	})
}

// Ping 启动时检查连接
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis at %s: %w", client.Options().Addr, err)
	}
	return nil
}

// Close 未启用缓存时 client 为 nil
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
