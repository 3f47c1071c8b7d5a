package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/sqall01/alertR/alertr-common/database"
	"github.com/sqall01/alertR/alertr-common/mqtt"
	rediscommon "github.com/sqall01/alertR/alertr-common/redis"
	"github.com/sqall01/alertR/internal/aggregator"
	"github.com/sqall01/alertR/internal/bridge"
	"github.com/sqall01/alertR/internal/config"
	"github.com/sqall01/alertR/internal/dashboard"
	httpapi "github.com/sqall01/alertR/internal/http"
	"github.com/sqall01/alertR/internal/repository"
)

// ManagerService mobile manager 服务: 数据库 + 可选 Redis 缓存 + 可选 MQTT 失效通知 + HTTP
type ManagerService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqtt.Client
	invalidator *CacheInvalidator
	handler     http.Handler
	server      *Server
}

// NewManagerService 创建服务; sqlite 数据库会自动建表
func NewManagerService(cfg *config.Config, logger *zap.Logger) (*ManagerService, error) {
	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &ManagerService{config: cfg, logger: logger, db: db}
	if err := s.init(); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *ManagerService) init() error {
	cfg := s.config
	ctx := context.Background()

	if cfg.Database.Driver == "sqlite" {
		if err := repository.EnsureSchema(ctx, s.db, cfg.Legacy()); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	repo := repository.NewAlertSystemRepository(s.db, repository.Options{
		Driver: cfg.Database.Driver,
		Legacy: cfg.Legacy(),
	}, s.logger)

	var cache *aggregator.CacheManager
	if cfg.Redis.Enabled {
		s.redisClient = rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(ctx, s.redisClient); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		cache = aggregator.NewCacheManager(aggregator.NewRedisKVStore(s.redisClient), cfg.Redis.TTL, s.logger)
	}
	svc := aggregator.NewService(aggregator.NewAggregator(repo, s.logger), cache, s.logger)

	if cfg.MQTT.Enabled {
		if cache == nil {
			s.logger.Warn("MQTT enabled without redis cache, invalidation notices have nothing to clear")
		}
		client, err := mqtt.NewClient(&cfg.MQTT, s.logger)
		if err != nil {
			return err
		}
		s.mqttClient = client
		s.invalidator = NewCacheInvalidator(client, svc, cfg.MQTT.Topic, byte(cfg.MQTT.QoS), s.logger)
	}

	// nil 接口值表示未启用
	var commands httpapi.CommandSender
	if cfg.Bridge.Enabled {
		commands = bridge.NewClient(cfg.Bridge.SocketPath, cfg.Bridge.Timeout, s.logger)
	}

	health := healthCheck{db: repo}
	if s.mqttClient != nil {
		health.mqtt = s.mqttClient
	}

	settings := dashboard.DefaultSettings()
	settings.Legacy = cfg.Legacy()
	h := httpapi.NewManagerHandler(httpapi.ManagerHandlerConfig{
		Settings:    settings,
		SettleDelay: cfg.Bridge.SettleDelay,
	}, svc, commands, health, s.logger)

	router := httpapi.NewRouter(s.logger)
	router.RegisterManagerRoutes(h)
	s.handler = router
	s.server = NewServer(cfg.HTTP.Addr, router, s.logger)
	return nil
}

// Handler HTTP 入口
func (s *ManagerService) Handler() http.Handler {
	return s.handler
}

// Start 阻塞直到 Stop
func (s *ManagerService) Start(ctx context.Context) error {
	s.logger.Info("Starting mobile manager service",
		zap.String("addr", s.config.HTTP.Addr),
		zap.String("driver", s.config.Database.Driver),
		zap.String("schema", s.config.Schema),
		zap.Bool("redis_cache", s.redisClient != nil),
		zap.Bool("bridge", s.config.Bridge.Enabled),
	)

	if s.invalidator != nil {
		if err := s.invalidator.Start(); err != nil {
			return err
		}
	}
	return s.server.Start()
}

// Stop 关闭 HTTP 服务和所有连接
func (s *ManagerService) Stop(ctx context.Context) error {
	var errs []error
	if s.server != nil {
		if err := s.server.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.invalidator != nil {
		if err := s.invalidator.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, s.close())
	return errors.Join(errs...)
}

func (s *ManagerService) close() error {
	var errs []error
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if err := rediscommon.Close(s.redisClient); err != nil {
		errs = append(errs, err)
	}
	if err := database.Close(s.db); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
