package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sqall01/alertR/internal/models"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix     = "alertr:mobile-manager:response"
	cacheGenerationKey = "alertr:mobile-manager:generation"
	defaultCacheTTL    = 10 * time.Second
)

// CacheManager 缓存已组装的响应
// key 中带有 generation, Invalidate 更换 generation 使旧 key 全部失效
type CacheManager struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewCacheManager ttl<=0 时使用 10 秒
func NewCacheManager(kv KVStore, ttl time.Duration, logger *zap.Logger) *CacheManager {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CacheManager{kv: kv, ttl: ttl, logger: logger, now: time.Now}
}

func (c *CacheManager) generation(ctx context.Context) (string, error) {
	gen, err := c.kv.Get(ctx, cacheGenerationKey)
	if errors.Is(err, ErrCacheMiss) {
		return "0", nil
	}
	return string(gen), err
}

func (c *CacheManager) key(gen string, req Request) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, gen, req.CacheKey())
}

// Key 返回当前 generation 下 req 的缓存 key
// 查询数据库前取得 key, 查询期间的 Invalidate 会让写入的结果直接失效
func (c *CacheManager) Key(ctx context.Context, req Request) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read cache generation: %w", err)
	}
	return c.key(gen, req), nil
}

// Get 返回缓存的 JSON, 不存在时返回 ErrCacheMiss
func (c *CacheManager) Get(ctx context.Context, key string) ([]byte, error) {
	return c.kv.Get(ctx, key)
}

// Put 写入响应 JSON
func (c *CacheManager) Put(ctx context.Context, key string, body []byte) error {
	if err := c.kv.Set(ctx, key, body, c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	c.logger.Debug("Updated response cache", zap.String("key", key))
	return nil
}

// Invalidate 使所有缓存的响应失效
func (c *CacheManager) Invalidate(ctx context.Context) error {
	gen := strconv.FormatInt(c.now().UnixNano(), 10)
	if err := c.kv.Set(ctx, cacheGenerationKey, []byte(gen), 0); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	c.logger.Debug("Invalidated response cache", zap.String("generation", gen))
	return nil
}

// Service 带缓存的聚合入口, cache 为 nil 时直接查询数据库
type Service struct {
	aggregator *Aggregator
	cache      *CacheManager
	logger     *zap.Logger
}

// NewService 创建聚合服务
func NewService(aggregator *Aggregator, cache *CacheManager, logger *zap.Logger) *Service {
	return &Service{aggregator: aggregator, cache: cache, logger: logger}
}

// Aggregate 返回编码好的 JSON; 缓存读写失败只记录日志
func (s *Service) Aggregate(ctx context.Context, req Request) ([]byte, error) {
	var key string
	if s.cache != nil {
		k, err := s.cache.Key(ctx, req)
		if err != nil {
			s.logger.Warn("Failed to read response cache", zap.Error(err))
		} else {
			key = k
			body, err := s.cache.Get(ctx, key)
			if err == nil {
				return body, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				s.logger.Warn("Failed to read response cache", zap.Error(err))
			}
		}
	}

	resp, err := s.aggregator.Aggregate(ctx, req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	if key != "" {
		if err := s.cache.Put(ctx, key, body); err != nil {
			s.logger.Warn("Failed to write response cache", zap.Error(err))
		}
	}
	return body, nil
}

// Snapshot 返回未编码的完整数据 (导出用, 不走缓存)
func (s *Service) Snapshot(ctx context.Context, req Request) (*models.Response, error) {
	return s.aggregator.Aggregate(ctx, req)
}

// Invalidate 缓存失效, 未启用缓存时为空操作
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}
