package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	schema: `CREATE TABLE IF NOT EXISTS channel_engagement (
		channel_id TEXT NOT NULL,
		engagement_type TEXT NOT NULL,
		json_response TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (channel_id, engagement_type)
	)`,
	get: `SELECT json_response FROM channel_engagement WHERE channel_id = ? AND engagement_type = ?`,
	upsert: `INSERT OR REPLACE INTO channel_engagement (channel_id, engagement_type, json_response, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
	list: `SELECT engagement_type, json_response FROM channel_engagement WHERE channel_id = ? ORDER BY engagement_type`,
}

// NewSQLiteStore 打开（必要时创建）本地 SQLite 数据库
func NewSQLiteStore(ctx context.Context, path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite 单写者
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, sqliteDialect)
}
