package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sqall01/alertR/alertr-common/mqtt"
)

// Subscriber MQTT 订阅接口, 由 alertr-common/mqtt.Client 实现
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// Invalidator 响应缓存失效
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheInvalidator 收到 alertR server 的变更通知后清空响应缓存
// 消息内容不解析, 任何消息都视为数据已变化
type CacheInvalidator struct {
	sub     Subscriber
	target  Invalidator
	topic   string
	qos     byte
	timeout time.Duration
	logger  *zap.Logger
}

func NewCacheInvalidator(sub Subscriber, target Invalidator, topic string, qos byte, logger *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{
		sub:     sub,
		target:  target,
		topic:   topic,
		qos:     qos,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Start 订阅通知主题
func (c *CacheInvalidator) Start() error {
	if err := c.sub.Subscribe(c.topic, c.qos, c.handle); err != nil {
		return fmt.Errorf("failed to start cache invalidator: %w", err)
	}
	c.logger.Info("Cache invalidator subscribed", zap.String("topic", c.topic))
	return nil
}

// Stop 取消订阅
func (c *CacheInvalidator) Stop() error {
	return c.sub.Unsubscribe(c.topic)
}

func (c *CacheInvalidator) handle(topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.target.Invalidate(ctx); err != nil {
		return fmt.Errorf("failed to invalidate response cache: %w", err)
	}
	c.logger.Debug("Response cache invalidated", zap.String("topic", topic), zap.Int("payload_size", len(payload)))
	return nil
}
