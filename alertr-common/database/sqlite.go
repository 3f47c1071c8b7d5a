package database

import (
	"database/sql"
	"fmt"

	"github.com/sqall01/alertR/alertr-common/config"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB 打开本地 sqlite 数据库 (开发/演示用)
// 单连接, 避免 database is locked
func NewSQLiteDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
