package service

import (
	"context"
	"errors"
	"fmt"

	httpapi "github.com/sqall01/alertR/internal/http"
)

// ConnectionChecker 由 alertr-common/mqtt.Client 实现
type ConnectionChecker interface {
	IsConnected() bool
}

var errMQTTDisconnected = errors.New("mqtt broker not connected")

// healthCheck /healthz 的检查项: 数据库, 以及启用时的 MQTT 连接
type healthCheck struct {
	db   httpapi.Pinger
	mqtt ConnectionChecker
}

var _ httpapi.Pinger = healthCheck{}

func (h healthCheck) Ping(ctx context.Context) error {
	if err := h.db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if h.mqtt != nil && !h.mqtt.IsConnected() {
		return errMQTTDisconnected
	}
	return nil
}
