package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

var (
	// ErrUnsupportedURL DATABASE_URL 的 scheme 不受支持
	ErrUnsupportedURL = errors.New("unsupported database url")
	// ErrInvalidJSON 写入的数据不是合法 JSON
	ErrInvalidJSON = errors.New("engagement data is not valid json")
)

// Store 以 (channel_id, engagement_type) 为键的 JSON 存储，单条写入为覆盖
type Store interface {
	// Get 读取一条记录，不存在时返回 (nil, false, nil)
	Get(ctx context.Context, channelID, engagementType string) ([]byte, bool, error)
	Put(ctx context.Context, channelID, engagementType string, data []byte) error
	// List 返回频道下所有类型的数据
	List(ctx context.Context, channelID string) (map[string][]byte, error)
	Ping(ctx context.Context) error
	Close() error
	Backend() string
}

// GetJSON 读取并解码一条记录
func GetJSON(ctx context.Context, s Store, channelID, engagementType string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, channelID, engagementType)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s/%s: %w", channelID, engagementType, err)
	}
	return true, nil
}

// PutJSON 编码并写入一条记录
func PutJSON(ctx context.Context, s Store, channelID, engagementType string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", channelID, engagementType, err)
	}
	return s.Put(ctx, channelID, engagementType, data)
}

func validateKey(channelID, engagementType string) error {
	if channelID == "" {
		return errors.New("channel id is required")
	}
	if engagementType == "" {
		return errors.New("engagement type is required")
	}
	return nil
}

// cleanJSON 校验 JSON，并移除无效的 UTF-8 与 NULL 字节
func cleanJSON(data []byte) ([]byte, error) {
	s := string(data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = removeNullBytes(s)
	if !json.Valid([]byte(s)) {
		return nil, ErrInvalidJSON
	}
	return []byte(s), nil
}

// removeNullBytes 移除 NULL 字符，PostgreSQL 文本字段不支持 NULL 字节
func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
