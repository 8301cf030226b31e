package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/config"
	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/logger"
)

// NewStore 根据配置选择存储后端：
//   - postgres:// / postgresql://  远程 PostgreSQL
//   - badger://<dir>               Badger，目录为空时使用内存
//   - sqlite://<file>              指定文件的 SQLite
//   - 空                           DATABASE_PATH/DATABASE_FILE 下的 SQLite
func NewStore(ctx context.Context, cfg config.DBConfig) (Store, error) {
	url := strings.TrimSpace(cfg.URL)
	switch {
	case url == "":
		path := filepath.Join(cfg.Path, cfg.File)
		logger.Log.Infof("使用本地 SQLite 数据库: %s", path)
		return NewSQLiteStore(ctx, path)

	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		logger.Log.Infof("使用 PostgreSQL 数据库: %s", config.MaskDSN(url))
		return NewPostgresStore(ctx, url)

	case strings.HasPrefix(url, "badger://"):
		dir := strings.TrimPrefix(url, "badger://")
		logger.Log.Infof("使用 Badger 数据库: %q", dir)
		return NewBadgerStore(dir)

	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		logger.Log.Infof("使用本地 SQLite 数据库: %s", path)
		return NewSQLiteStore(ctx, path)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, config.MaskDSN(url))
	}
}
