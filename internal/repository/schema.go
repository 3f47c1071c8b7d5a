package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed schema.sql
var schemaSQL string

//go:embed schema_legacy.sql
var schemaLegacySQL string

// EnsureSchema 创建本地开发/测试用的表结构
// 正式环境的表由 alertR server 维护, 这里只用于 sqlite 演示库和集成测试
func EnsureSchema(ctx context.Context, db *sql.DB, legacy bool) error {
	for _, stmt := range splitStatements(schemaSQL) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	if !legacy {
		return nil
	}
	for _, stmt := range splitStatements(schemaLegacySQL) {
		if _, err := db.ExecContext(ctx, stmt); err != nil && !isDuplicateColumn(err) {
			return fmt.Errorf("failed to apply legacy schema: %w", err)
		}
	}
	return nil
}

// sqlite: "duplicate column name", postgres: "column ... already exists"
func isDuplicateColumn(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

func splitStatements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
