package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/iWorld-y/channel_radar/app/channel_radar/pkg/metrics"
)

const (
	engagementKeyPrefix = "engagement:"
	// keySep 分隔频道与类型，不会出现在正常 ID 中
	keySep = "\x1f"
)

// BadgerStore 基于 Badger 的嵌入式 KV 存储
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore 打开 Badger 数据库，path 为空时使用内存模式
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

var _ Store = (*BadgerStore)(nil)

func engagementKey(channelID, engagementType string) []byte {
	return []byte(engagementKeyPrefix + channelID + keySep + engagementType)
}

func channelPrefix(channelID string) []byte {
	return []byte(engagementKeyPrefix + channelID + keySep)
}

func (s *BadgerStore) Backend() string { return "badger" }

func (s *BadgerStore) Get(ctx context.Context, channelID, engagementType string) (data []byte, ok bool, err error) {
	defer func() { metrics.RecordStoreOperation("badger", "get", err) }()

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(engagementKey(channelID, engagementType))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		ok = err == nil
		return err
	})
	return data, ok, err
}

func (s *BadgerStore) Put(ctx context.Context, channelID, engagementType string, data []byte) (err error) {
	defer func() { metrics.RecordStoreOperation("badger", "put", err) }()

	if err = validateKey(channelID, engagementType); err != nil {
		return err
	}
	if strings.Contains(channelID, keySep) || strings.Contains(engagementType, keySep) {
		return fmt.Errorf("key contains reserved separator")
	}
	cleaned, err := cleanJSON(data)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(engagementKey(channelID, engagementType), cleaned)
	})
}

func (s *BadgerStore) List(ctx context.Context, channelID string) (out map[string][]byte, err error) {
	defer func() { metrics.RecordStoreOperation("badger", "list", err) }()

	out = make(map[string][]byte)
	prefix := channelPrefix(channelID)
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			typ := strings.TrimPrefix(string(item.Key()), string(prefix))
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[typ] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger is closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
