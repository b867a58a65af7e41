package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Crawl     CrawlConfig     `yaml:"crawl" mapstructure:"crawl"`
	Audit     AuditConfig     `yaml:"audit" mapstructure:"audit"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
}

// ServerConfig configures the audit server.
type ServerConfig struct {
	Port          int   `yaml:"port" mapstructure:"port"`
	MaxUploadSize int64 `yaml:"max_upload_size" mapstructure:"max_upload_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CrawlConfig configures page discovery and fetching.
type CrawlConfig struct {
	MaxPages       int  `yaml:"max_pages" mapstructure:"max_pages"`
	Concurrency    int  `yaml:"concurrency" mapstructure:"concurrency"`
	TimeoutSecs    int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BatchPauseMs   int  `yaml:"batch_pause_ms" mapstructure:"batch_pause_ms"`
	RequestsPerSec int  `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	AllowPrivate   bool `yaml:"allow_private" mapstructure:"allow_private"`
}

// Timeout returns the per-fetch timeout as a duration.
func (c CrawlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// BatchPause returns the inter-batch pause as a duration.
func (c CrawlConfig) BatchPause() time.Duration {
	return time.Duration(c.BatchPauseMs) * time.Millisecond
}

// AuditConfig configures the scoring pipeline.
type AuditConfig struct {
	MaxAuditPages int `yaml:"max_audit_pages" mapstructure:"max_audit_pages"`
}

// AnthropicConfig holds the AI enhancement settings. An empty key disables
// enhancement entirely and the pipeline runs in basic mode.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-call timeout as a duration.
func (c AnthropicConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RateLimitConfig configures the per-IP fixed-window limiter.
type RateLimitConfig struct {
	WindowSecs  int `yaml:"window_secs" mapstructure:"window_secs"`
	MaxRequests int `yaml:"max_requests" mapstructure:"max_requests"`
}

// Window returns the limiter window as a duration.
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSecs) * time.Second
}

// StoreConfig configures the in-memory TTL stores.
type StoreConfig struct {
	TTLSecs int `yaml:"ttl_secs" mapstructure:"ttl_secs"`
}

// TTL returns the retention window as a duration.
func (c StoreConfig) TTL() time.Duration {
	return time.Duration(c.TTLSecs) * time.Second
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AIVIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_size", 10*1024*1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("crawl.max_pages", 50)
	v.SetDefault("crawl.concurrency", 5)
	v.SetDefault("crawl.timeout_secs", 15)
	v.SetDefault("crawl.batch_pause_ms", 300)
	v.SetDefault("crawl.requests_per_sec", 10)
	v.SetDefault("crawl.allow_private", false)
	v.SetDefault("audit.max_audit_pages", 20)
	// AutomaticEnv only surfaces keys viper already knows, so every key
	// needs a default for its AIVIS_ override to take effect.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("rate_limit.window_secs", 3600)
	v.SetDefault("rate_limit.max_requests", 5)
	v.SetDefault("store.ttl_secs", 3600)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
