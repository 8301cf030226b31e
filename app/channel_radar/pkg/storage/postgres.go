package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var postgresDialect = dialect{
	name: "postgres",
	schema: `CREATE TABLE IF NOT EXISTS channel_engagement (
		channel_id TEXT NOT NULL,
		engagement_type TEXT NOT NULL,
		json_response TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (channel_id, engagement_type)
	)`,
	get: `SELECT json_response FROM channel_engagement WHERE channel_id = $1 AND engagement_type = $2`,
	upsert: `INSERT INTO channel_engagement (channel_id, engagement_type, json_response, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (channel_id, engagement_type)
		DO UPDATE SET json_response = EXCLUDED.json_response, updated_at = NOW()`,
	list: `SELECT engagement_type, json_response FROM channel_engagement WHERE channel_id = $1 ORDER BY engagement_type`,
}

// NewPostgresStore 连接远程 PostgreSQL
func NewPostgresStore(ctx context.Context, dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	return newSQLStore(ctx, db, postgresDialect)
}
