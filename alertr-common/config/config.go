package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 数据库配置
// Driver: "postgres" (默认) 或 "sqlite"
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"` // sqlite 文件路径
	MaxConns int    `yaml:"max_conns"`
	MaxIdle  int    `yaml:"max_idle"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite" {
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", c.Path)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// LoadFromEnv 从环境变量加载配置, 未设置的字段保持原值
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	c.Driver = envString(prefix+"_DRIVER", c.Driver)
	c.Host = envString(prefix+"_HOST", c.Host)
	c.Port = envInt(prefix+"_PORT", c.Port)
	c.User = envString(prefix+"_USER", c.User)
	c.Password = envString(prefix+"_PASSWORD", c.Password)
	c.Database = envString(prefix+"_DATABASE", c.Database)
	c.SSLMode = envString(prefix+"_SSLMODE", c.SSLMode)
	c.Path = envString(prefix+"_PATH", c.Path)
	c.MaxConns = envInt(prefix+"_MAX_CONNS", c.MaxConns)
	c.MaxIdle = envInt(prefix+"_MAX_IDLE", c.MaxIdle)
}

// LoadFromEnv 从环境变量加载Redis配置
func (c *RedisConfig) LoadFromEnv(prefix string) {
	c.Enabled = envBool(prefix+"_ENABLED", c.Enabled)
	c.Addr = envString(prefix+"_ADDR", c.Addr)
	c.Password = envString(prefix+"_PASSWORD", c.Password)
	c.DB = envInt(prefix+"_DB", c.DB)
	c.TTL = envDuration(prefix+"_TTL", c.TTL)
}

// LoadFromEnv 从环境变量加载MQTT配置
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	c.Enabled = envBool(prefix+"_ENABLED", c.Enabled)
	c.Broker = envString(prefix+"_BROKER", c.Broker)
	c.ClientID = envString(prefix+"_CLIENT_ID", c.ClientID)
	c.Username = envString(prefix+"_USERNAME", c.Username)
	c.Password = envString(prefix+"_PASSWORD", c.Password)
	c.Topic = envString(prefix+"_TOPIC", c.Topic)
	c.QoS = byte(envInt(prefix+"_QOS", int(c.QoS)))
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
