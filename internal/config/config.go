package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sqall01/alertR/alertr-common/config"
	"gopkg.in/yaml.v3"
)

// schema 版本
const (
	SchemaCurrent = "current"
	SchemaLegacy  = "legacy"
)

// Config mobile manager 服务配置
// 优先级: 默认值 < YAML 文件 (ALERTR_CONFIG_FILE) < 环境变量
type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Database config.DatabaseConfig `yaml:"database"`
	Redis    config.RedisConfig    `yaml:"redis"`
	MQTT     config.MQTTConfig     `yaml:"mqtt"`

	// 与 alertR server 的 unix socket 命令通道
	Bridge struct {
		Enabled     bool          `yaml:"enabled"`
		SocketPath  string        `yaml:"socket_path"`
		SettleDelay time.Duration `yaml:"settle_delay"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"bridge"`

	Schema string `yaml:"schema"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Legacy 是否使用旧 schema
func (c *Config) Legacy() bool {
	return c.Schema == SchemaLegacy
}

// Load 加载服务配置
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Addr = ":8080"

	cfg.Database = config.DatabaseConfig{
		Driver:   "postgres",
		Host:     "localhost",
		Port:     5432,
		User:     "alertr",
		Password: "alertr",
		Database: "alertr",
		SSLMode:  "disable",
		Path:     "alertr.db",
		MaxConns: 10,
		MaxIdle:  2,
	}
	cfg.Redis = config.RedisConfig{Addr: "localhost:6379", TTL: 10 * time.Second}
	cfg.MQTT = config.MQTTConfig{Broker: "tcp://localhost:1883", ClientID: "alertr-mobile-manager", Topic: "alertr/manager/update", QoS: 1}

	cfg.Bridge.Enabled = false
	cfg.Bridge.SocketPath = "/tmp/alertr-manager.sock"
	cfg.Bridge.SettleDelay = 2 * time.Second
	cfg.Bridge.Timeout = 5 * time.Second

	cfg.Schema = SchemaCurrent
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	if err := loadFile(cfg); err != nil {
		return nil, err
	}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", cfg.HTTP.Addr)
	cfg.Database.LoadFromEnv("DB")
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.Bridge.Enabled = parseBool(getEnv("BRIDGE_ENABLED", ""), cfg.Bridge.Enabled)
	cfg.Bridge.SocketPath = getEnv("BRIDGE_SOCKET_PATH", cfg.Bridge.SocketPath)
	cfg.Bridge.SettleDelay = parseDuration(getEnv("BRIDGE_SETTLE_DELAY", ""), cfg.Bridge.SettleDelay)
	cfg.Bridge.Timeout = parseDuration(getEnv("BRIDGE_TIMEOUT", ""), cfg.Bridge.Timeout)
	cfg.Schema = getEnv("ALERTR_SCHEMA", cfg.Schema)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if cfg.Schema != SchemaCurrent && cfg.Schema != SchemaLegacy {
		return nil, fmt.Errorf("invalid schema %q (expected %q or %q)", cfg.Schema, SchemaCurrent, SchemaLegacy)
	}
	return cfg, nil
}

// ClientConfig 终端 dashboard 客户端配置
type ClientConfig struct {
	ServerURL string `yaml:"server_url"`

	PollInterval     time.Duration `yaml:"poll_interval"`
	LivenessInterval time.Duration `yaml:"liveness_interval"`
	LivenessTimeout  time.Duration `yaml:"liveness_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`

	SensorAlertsNumber  int `yaml:"sensor_alerts_number"`
	OverviewAlertsCount int `yaml:"overview_alerts_count"`
	EventsNumber        int `yaml:"events_number"`

	InitialView string `yaml:"initial_view"`
	Color       string `yaml:"color"` // auto, always, never
	Legacy      bool   `yaml:"legacy"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadClient 加载客户端配置
func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{
		ServerURL:           "http://localhost:8080",
		PollInterval:        10 * time.Second,
		LivenessInterval:    2 * time.Second,
		LivenessTimeout:     80 * time.Second,
		RequestTimeout:      15 * time.Second,
		SensorAlertsNumber:  50,
		OverviewAlertsCount: 10,
		EventsNumber:        50,
		InitialView:         "overview",
		Color:               "auto",
	}
	cfg.Log.Level = "warn"

	if err := loadFile(cfg); err != nil {
		return nil, err
	}

	cfg.ServerURL = getEnv("ALERTR_SERVER_URL", cfg.ServerURL)
	cfg.PollInterval = parseDuration(getEnv("DASHBOARD_POLL_INTERVAL", ""), cfg.PollInterval)
	cfg.LivenessInterval = parseDuration(getEnv("DASHBOARD_LIVENESS_INTERVAL", ""), cfg.LivenessInterval)
	cfg.LivenessTimeout = parseDuration(getEnv("DASHBOARD_LIVENESS_TIMEOUT", ""), cfg.LivenessTimeout)
	cfg.RequestTimeout = parseDuration(getEnv("DASHBOARD_REQUEST_TIMEOUT", ""), cfg.RequestTimeout)
	cfg.SensorAlertsNumber = parseInt(getEnv("DASHBOARD_SENSOR_ALERTS_NUMBER", ""), cfg.SensorAlertsNumber)
	cfg.OverviewAlertsCount = parseInt(getEnv("DASHBOARD_OVERVIEW_ALERTS", ""), cfg.OverviewAlertsCount)
	cfg.EventsNumber = parseInt(getEnv("DASHBOARD_EVENTS_NUMBER", ""), cfg.EventsNumber)
	cfg.InitialView = getEnv("DASHBOARD_VIEW", cfg.InitialView)
	cfg.Color = getEnv("DASHBOARD_COLOR", cfg.Color)
	cfg.Legacy = getEnv("ALERTR_SCHEMA", "") == SchemaLegacy || cfg.Legacy
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)

	if cfg.SensorAlertsNumber <= 0 || cfg.OverviewAlertsCount <= 0 || cfg.EventsNumber <= 0 {
		return nil, fmt.Errorf("page sizes must be positive")
	}
	return cfg, nil
}

// loadFile 读取 .env 和 ALERTR_CONFIG_FILE 指定的 YAML 文件
func loadFile(out any) error {
	// .env 不存在时忽略; 已存在的环境变量不会被覆盖
	_ = godotenv.Load()

	path := os.Getenv("ALERTR_CONFIG_FILE")
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func parseBool(s string, def bool) bool {
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(s); err == nil && v > 0 {
		return v
	}
	return def
}
