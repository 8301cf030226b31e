package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	LLM         LLMConfig         `yaml:"llm"`
	Generation  GenerationConfig  `yaml:"generation"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Breaker     BreakerConfig     `yaml:"breaker"`
	DB          DBConfig          `yaml:"db"`
	Cache       CacheConfig       `yaml:"cache"`
	Log         LogConfig         `yaml:"log"`
	Environment string            `yaml:"environment" env:"ENVIRONMENT"`
	Debug       bool              `yaml:"debug" env:"DEBUG"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host        string          `yaml:"host" env:"API_HOST"`
	Port        int             `yaml:"port" env:"API_PORT"`
	Timeout     time.Duration   `yaml:"timeout" env:"API_TIMEOUT"`
	CORSOrigins []string        `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig 按 IP 的接口限流，Requests 为 0 时关闭
type RateLimitConfig struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider string        `yaml:"provider" env:"LLM_PROVIDER"`
	BaseURL  string        `yaml:"base_url" env:"LLM_BASE_URL"`
	APIKey   string        `yaml:"api_key" env:"LLM_API_KEY"`
	Model    string        `yaml:"model" env:"LLM_MODEL"`
	Timeout  time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
}

// ollamaEnv 兼容旧的 OLLAMA_* 变量名，同时设置时 LLM_* 优先
type ollamaEnv struct {
	BaseURL string `env:"OLLAMA_BASE_URL"`
	Model   string `env:"OLLAMA_MODEL"`
}

// GenerationConfig 结构化生成的重试策略
type GenerationConfig struct {
	Retries    int           `yaml:"retries" env:"GENERATION_RETRIES"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"GENERATION_RETRY_DELAY"`
	// Backoff 每次重试延迟的倍数，1 表示固定延迟
	Backoff float64 `yaml:"backoff" env:"GENERATION_BACKOFF"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	MaxInFlight int `yaml:"max_in_flight" env:"LLM_MAX_IN_FLIGHT"`
	QPS         int `yaml:"qps" env:"LLM_QPS"`
	RPM         int `yaml:"rpm" env:"LLM_RPM"`
}

// BreakerConfig 熔断配置，FailureThreshold 为 0 时关闭
type BreakerConfig struct {
	FailureThreshold uint32        `yaml:"failure_threshold" env:"LLM_BREAKER_FAILURES"`
	OpenTimeout      time.Duration `yaml:"open_timeout" env:"LLM_BREAKER_TIMEOUT"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	URL  string `yaml:"url" env:"DATABASE_URL"`
	Path string `yaml:"path" env:"DATABASE_PATH"`
	File string `yaml:"file" env:"DATABASE_FILE"`
}

// CacheConfig 关键词分析结果缓存，TTL 为 0 时关闭
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"INSIGHT_CACHE_TTL"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" env:"API_LOG_LEVEL"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

// LoadConfig 从指定路径加载配置，再用环境变量覆盖
func LoadConfig(path string) (*Config, error) {
	// 重试次数允许显式配置为 0，因此在读取前设置默认值
	cfg := Config{Generation: GenerationConfig{Retries: 2}}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	loadDotEnv()
	var legacy ollamaEnv
	if err := env.Parse(&legacy); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if legacy.BaseURL != "" {
		cfg.LLM.BaseURL = legacy.BaseURL
	}
	if legacy.Model != "" {
		cfg.LLM.Model = legacy.Model
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv 优先读取 config.env，不存在时回退到 .env；已有的环境变量不会被覆盖
func loadDotEnv() {
	if _, err := os.Stat("config.env"); err == nil {
		_ = godotenv.Load("config.env")
		return
	}
	_ = godotenv.Load()
}

// ApplyDefaults 填充未配置的字段
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 10 * time.Minute
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.RateLimit.Requests > 0 && c.Server.RateLimit.Window == 0 {
		c.Server.RateLimit.Window = time.Minute
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "qwen2.5:7b"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 60 * time.Second
	}

	if c.Generation.RetryDelay == 0 {
		c.Generation.RetryDelay = time.Second
	}
	if c.Generation.Backoff == 0 {
		c.Generation.Backoff = 1
	}

	if c.Concurrency.MaxInFlight == 0 {
		c.Concurrency.MaxInFlight = 1
	}
	if c.Breaker.FailureThreshold > 0 && c.Breaker.OpenTimeout == 0 {
		c.Breaker.OpenTimeout = 30 * time.Second
	}

	if c.DB.Path == "" {
		c.DB.Path = "sqlite"
	}
	if c.DB.File == "" {
		c.DB.File = "yt_insights.db"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider: %s", c.LLM.Provider))
	}
	if c.LLM.Timeout < 0 {
		errs = append(errs, errors.New("llm timeout must not be negative"))
	}
	if c.Generation.Retries < 0 {
		errs = append(errs, errors.New("generation retries must not be negative"))
	}
	if c.Generation.Backoff < 1 {
		errs = append(errs, errors.New("generation backoff must be >= 1"))
	}
	if c.Concurrency.MaxInFlight < 1 {
		errs = append(errs, errors.New("concurrency max_in_flight must be >= 1"))
	}
	if c.Concurrency.QPS < 0 || c.Concurrency.RPM < 0 {
		errs = append(errs, errors.New("concurrency qps/rpm must not be negative"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid api port: %d", c.Server.Port))
	}
	return errors.Join(errs...)
}

// Addr 监听地址
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IsCloudDatabase 是否使用远程数据库
func (c *Config) IsCloudDatabase() bool {
	return strings.HasPrefix(c.DB.URL, "postgres://") || strings.HasPrefix(c.DB.URL, "postgresql://")
}

// Summary 返回不含敏感信息的配置摘要
func (c *Config) Summary() map[string]any {
	summary := map[string]any{
		"database_path":     c.DB.Path,
		"database_file":     c.DB.File,
		"is_cloud_database": c.IsCloudDatabase(),
		"llm_provider":      c.LLM.Provider,
		"ollama_base_url":   c.LLM.BaseURL,
		"ollama_model":      c.LLM.Model,
		"api_host":          c.Server.Host,
		"api_port":          c.Server.Port,
		"environment":       c.Environment,
		"debug":             c.Debug,
	}
	if c.DB.URL != "" {
		summary["database_url"] = MaskDSN(c.DB.URL)
	}
	if c.LLM.APIKey != "" {
		summary["llm_api_key"] = "***masked***"
	}
	return summary
}

// MaskDSN 隐藏连接串中的 apikey 与密码
func MaskDSN(dsn string) string {
	if i := strings.Index(dsn, "apikey="); i >= 0 {
		return dsn[:i] + "apikey=***masked***"
	}
	if scheme := strings.Index(dsn, "://"); scheme >= 0 {
		rest := dsn[scheme+3:]
		at := strings.LastIndex(rest, "@")
		colon := strings.Index(rest, ":")
		if at > 0 && colon >= 0 && colon < at {
			return dsn[:scheme+3] + rest[:colon] + ":***masked***" + rest[at:]
		}
	}
	return dsn
}
