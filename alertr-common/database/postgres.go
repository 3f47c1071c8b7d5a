package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sqall01/alertR/alertr-common/config"

	_ "github.com/lib/pq"
)

// NewPostgresDB 创建PostgreSQL数据库连接
func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open 按 cfg.Driver 选择驱动
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "", "postgres":
		return NewPostgresDB(cfg)
	case "sqlite":
		return NewSQLiteDB(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close 关闭数据库连接
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
