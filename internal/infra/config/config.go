package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Sentiment providers.
const (
	ProviderHuggingFace = "huggingface"
	ProviderChatGPT     = "chatgpt"
	ProviderNone        = "none"
)

// Archive providers.
const (
	ArchiveMemory = "memory"
	ArchiveR2     = "r2"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Valkey    ValkeyConfig    `yaml:"valkey"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	LLM       LLMConfig       `yaml:"llm"`
	Journal   JournalConfig   `yaml:"journal"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests. Exclude holds
// route templates (":id" matches one segment) that must never be replayed.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// AuthConfig signs and expires bearer tokens.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// PostgresConfig contains DSN and pooling settings. An empty DSN keeps data in memory.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig backs the dashboard cache, token revocations, and the analysis quota.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// SentimentConfig selects and tunes the emotion classifier.
type SentimentConfig struct {
	Provider      string        `yaml:"provider"`
	APIKey        string        `yaml:"apiKey"`
	BaseURL       string        `yaml:"baseUrl"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	MaxInputChars int           `yaml:"maxInputChars"`
	Quota         QuotaConfig   `yaml:"quota"`
}

// QuotaConfig limits analysis calls per user. Limit 0 disables the quota.
type QuotaConfig struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseUrl"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// JournalConfig tunes entry validation and the dashboard.
type JournalConfig struct {
	Timezone          string        `yaml:"timezone"`
	SeriesWindowDays  int           `yaml:"seriesWindowDays"`
	DashboardCacheTTL time.Duration `yaml:"dashboardCacheTtl"`
	MaxContentLength  int           `yaml:"maxContentLength"`
	MaxTags           int           `yaml:"maxTags"`
	RecentEntries     int           `yaml:"recentEntries"`
}

// Location resolves Timezone; empty means UTC.
func (c JournalConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ArchiveConfig selects where journal exports are written.
type ArchiveConfig struct {
	Provider  string `yaml:"provider"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads .env, a YAML file, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	setString("HTTP_ADDRESS", &cfg.HTTP.Address)
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	setBool("HTTP_RETRY_ENABLED", &cfg.HTTP.Retry.Enabled)
	setInt("HTTP_RETRY_MAX_ATTEMPTS", &cfg.HTTP.Retry.MaxAttempts)
	setDuration("HTTP_RETRY_BASE_BACKOFF", &cfg.HTTP.Retry.BaseBackoff)

	setString("SECRET_KEY", &cfg.Auth.Secret)
	setString("AUTH_SECRET", &cfg.Auth.Secret)
	setDuration("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
	setDuration("AUTH_REFRESH_TOKEN_TTL", &cfg.Auth.RefreshTokenTTL)

	setString("DATABASE_URL", &cfg.Postgres.DSN)
	setString("POSTGRES_DSN", &cfg.Postgres.DSN)
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}

	setBool("VALKEY_ENABLED", &cfg.Valkey.Enabled)
	setString("VALKEY_ADDR", &cfg.Valkey.Addr)
	setString("VALKEY_PREFIX", &cfg.Valkey.Prefix)

	setString("SENTIMENT_PROVIDER", &cfg.Sentiment.Provider)
	setString("HUGGING_FACE_API_KEY", &cfg.Sentiment.APIKey)
	setString("SENTIMENT_API_KEY", &cfg.Sentiment.APIKey)
	setString("SENTIMENT_BASE_URL", &cfg.Sentiment.BaseURL)
	setString("SENTIMENT_MODEL", &cfg.Sentiment.Model)
	setDuration("SENTIMENT_TIMEOUT", &cfg.Sentiment.Timeout)
	setInt("SENTIMENT_MAX_INPUT_CHARS", &cfg.Sentiment.MaxInputChars)
	setInt("SENTIMENT_QUOTA_LIMIT", &cfg.Sentiment.Quota.Limit)
	setDuration("SENTIMENT_QUOTA_WINDOW", &cfg.Sentiment.Quota.Window)

	setString("LLM_API_KEY", &cfg.LLM.APIKey)
	setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	setString("LLM_MODEL", &cfg.LLM.Model)
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	setDuration("LLM_TIMEOUT", &cfg.LLM.Timeout)

	setString("JOURNAL_TIMEZONE", &cfg.Journal.Timezone)
	setInt("JOURNAL_SERIES_WINDOW_DAYS", &cfg.Journal.SeriesWindowDays)
	setDuration("JOURNAL_DASHBOARD_CACHE_TTL", &cfg.Journal.DashboardCacheTTL)
	setInt("JOURNAL_MAX_CONTENT_LENGTH", &cfg.Journal.MaxContentLength)
	setInt("JOURNAL_MAX_TAGS", &cfg.Journal.MaxTags)

	setString("ARCHIVE_PROVIDER", &cfg.Archive.Provider)
	setString("R2_ENDPOINT", &cfg.Archive.Endpoint)
	setString("R2_ACCESS_KEY", &cfg.Archive.AccessKey)
	setString("R2_SECRET_KEY", &cfg.Archive.SecretKey)
	setString("R2_BUCKET", &cfg.Archive.Bucket)
	setString("R2_REGION", &cfg.Archive.Region)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/auth/register",
					"/api/v1/entries",
					"/api/v1/entries/:id/analyze",
					"/api/v1/exports",
				},
			},
		},
		Auth: AuthConfig{
			Secret:          "dev-secret-change-me",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			Prefix: "journal",
		},
		Sentiment: SentimentConfig{
			Provider:      ProviderHuggingFace,
			BaseURL:       "https://api-inference.huggingface.co",
			Model:         "j-hartmann/emotion-english-distilroberta-base",
			Timeout:       15 * time.Second,
			MaxInputChars: 2000,
			Quota: QuotaConfig{
				Limit:  5,
				Window: time.Minute,
			},
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0,
			Timeout:     30 * time.Second,
		},
		Journal: JournalConfig{
			Timezone:          "UTC",
			SeriesWindowDays:  7,
			DashboardCacheTTL: 5 * time.Minute,
			MaxContentLength:  10000,
			MaxTags:           10,
			RecentEntries:     5,
		},
		Archive: ArchiveConfig{
			Provider: ArchiveMemory,
			Region:   "auto",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if c.Valkey.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when valkey is enabled")
	}
	switch c.Sentiment.Provider {
	case ProviderHuggingFace, ProviderChatGPT, ProviderNone:
	default:
		return fmt.Errorf("sentiment.provider %q must be one of huggingface, chatgpt, none", c.Sentiment.Provider)
	}
	if c.Sentiment.MaxInputChars < 0 {
		return errors.New("sentiment.maxInputChars cannot be negative")
	}
	if c.Sentiment.Quota.Limit < 0 {
		return errors.New("sentiment.quota.limit cannot be negative")
	}
	if c.Sentiment.Quota.Limit > 0 && c.Sentiment.Quota.Window <= 0 {
		return errors.New("sentiment.quota.window must be positive")
	}
	if _, err := c.Journal.Location(); err != nil {
		return fmt.Errorf("journal.timezone: %w", err)
	}
	if c.Journal.SeriesWindowDays <= 0 {
		return errors.New("journal.seriesWindowDays must be positive")
	}
	if c.Journal.DashboardCacheTTL < 0 {
		return errors.New("journal.dashboardCacheTtl cannot be negative")
	}
	if c.Journal.MaxContentLength <= 0 {
		return errors.New("journal.maxContentLength must be positive")
	}
	if c.Journal.MaxTags < 0 {
		return errors.New("journal.maxTags cannot be negative")
	}
	switch c.Archive.Provider {
	case ArchiveMemory:
	case ArchiveR2:
		if strings.TrimSpace(c.Archive.Endpoint) == "" || strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive.endpoint and archive.bucket are required for r2")
		}
	default:
		return fmt.Errorf("archive.provider %q must be memory or r2", c.Archive.Provider)
	}
	return nil
}
