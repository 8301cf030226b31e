package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/metrics"
)

// dialect 不同数据库的建表与 upsert 语句
type dialect struct {
	name   string
	schema string
	get    string
	upsert string
	list   string
}

// sqlStore SQLite 与 PostgreSQL 共用的实现
type sqlStore struct {
	db *sql.DB
	d  dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*sqlStore, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect %s: %w", d.name, err)
	}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &sqlStore{db: db, d: d}, nil
}

func (s *sqlStore) Backend() string { return s.d.name }

func (s *sqlStore) Get(ctx context.Context, channelID, engagementType string) (data []byte, ok bool, err error) {
	defer func() { metrics.RecordStoreOperation(s.d.name, "get", err) }()

	var raw string
	err = s.db.QueryRowContext(ctx, s.d.get, channelID, engagementType).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

func (s *sqlStore) Put(ctx context.Context, channelID, engagementType string, data []byte) (err error) {
	defer func() { metrics.RecordStoreOperation(s.d.name, "put", err) }()

	if err = validateKey(channelID, engagementType); err != nil {
		return err
	}
	cleaned, err := cleanJSON(data)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, s.d.upsert, channelID, engagementType, string(cleaned)); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, rerr)
		}
		return err
	}
	return tx.Commit()
}

func (s *sqlStore) List(ctx context.Context, channelID string) (out map[string][]byte, err error) {
	defer func() { metrics.RecordStoreOperation(s.d.name, "list", err) }()

	rows, err := s.db.QueryContext(ctx, s.d.list, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = make(map[string][]byte)
	for rows.Next() {
		var typ, raw string
		if err = rows.Scan(&typ, &raw); err != nil {
			return nil, err
		}
		out[typ] = []byte(raw)
	}
	return out, rows.Err()
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}
