package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
)

// runStoreContract 各后端共享的行为测试
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	_, ok, err := s.Get(ctx, "UC1", "keyword_analysis")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "UC1", "keyword_analysis", []byte(`{"top_keywords": [{"keyword": "go"}]}`)))
	data, ok, err := s.Get(ctx, "UC1", "keyword_analysis")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"top_keywords": [{"keyword": "go"}]}`, string(data))

	// 覆盖写入
	require.NoError(t, s.Put(ctx, "UC1", "keyword_analysis", []byte(`{"total_videos_analyzed": 3}`)))
	data, _, err = s.Get(ctx, "UC1", "keyword_analysis")
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_videos_analyzed": 3}`, string(data))

	require.NoError(t, s.Put(ctx, "UC1", "channel_strategy", []byte(`{"region": "US"}`)))
	require.NoError(t, s.Put(ctx, "UC2", "channel_strategy", []byte(`{"region": "JP"}`)))

	all, err := s.List(ctx, "UC1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.JSONEq(t, `{"region": "US"}`, string(all["channel_strategy"]))

	empty, err := s.List(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)

	err = s.Put(ctx, "UC1", "broken", []byte(`{not json`))
	assert.True(t, errors.Is(err, ErrInvalidJSON))
	assert.Error(t, s.Put(ctx, "", "x", []byte(`{}`)))

	var decoded struct {
		Region string `json:"region"`
	}
	ok, err = GetJSON(ctx, s, "UC2", "channel_strategy", &decoded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "JP", decoded.Region)

	require.NoError(t, PutJSON(ctx, s, "UC3", "notes", map[string]any{"text": "a\x00b"}))
	data, ok, err = s.Get(ctx, "UC3", "notes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, string(data), "\x00")
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "db", "yt_insights.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "sqlite", s.Backend())
	runStoreContract(t, s)
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore("")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "badger", s.Backend())
	runStoreContract(t, s)

	// 前缀不会误匹配其他频道
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "UC1x", "t", []byte(`{}`)))
	all, err := s.List(ctx, "UC1")
	require.NoError(t, err)
	assert.NotContains(t, all, "t")
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	s, err := NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	defer s.Close()

	runStoreContract(t, s)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewStore(ctx, config.DBConfig{Path: dir, File: "a.db"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", s.Backend())
	require.NoError(t, s.Close())
	assert.FileExists(t, filepath.Join(dir, "a.db"))

	s, err = NewStore(ctx, config.DBConfig{URL: "badger://"})
	require.NoError(t, err)
	assert.Equal(t, "badger", s.Backend())
	require.NoError(t, s.Close())

	s, err = NewStore(ctx, config.DBConfig{URL: "sqlite://" + filepath.Join(dir, "b.db")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = NewStore(ctx, config.DBConfig{URL: "sqlitecloud://host:8860/db?apikey=secret"})
	require.ErrorIs(t, err, ErrUnsupportedURL)
	assert.NotContains(t, err.Error(), "secret")
}
