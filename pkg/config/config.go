// Package config loads application configuration from the environment and an
// optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Environment string `mapstructure:"APP_ENV"`
	ServerPort  int    `mapstructure:"SERVER_PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns  int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns  int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnLifetime  string `mapstructure:"DB_CONN_MAX_LIFETIME"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	SummaryCacheTTL string `mapstructure:"SUMMARY_CACHE_TTL"`

	// JWTSecret signs access tokens (HS256). Required in every environment.
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	JWTIssuer    string `mapstructure:"JWT_ISSUER"`
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	OpenAIAPIKey         string `mapstructure:"OPENAI_API_KEY"`
	OpenAIBaseURL        string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIModel          string `mapstructure:"OPENAI_MODEL"`
	SummaryMaxInputChars int    `mapstructure:"SUMMARY_MAX_INPUT_CHARS"`

	DefaultPerPage int `mapstructure:"DEFAULT_PER_PAGE"`
	MaxPerPage     int `mapstructure:"MAX_PER_PAGE"`

	LoginRatePerMinute int `mapstructure:"LOGIN_RATE_PER_MINUTE"`
	APIRatePerMinute   int `mapstructure:"API_RATE_PER_MINUTE"`

	CORSOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// TrustedProxies lists proxy CIDRs or addresses whose X-Forwarded-For is
	// used for client addresses. Empty trusts no header.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// OTLPEndpoint enables tracing when set (host:port of an OTLP/HTTP collector).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read builds Config without validating it. Tools that only touch the
// database (migrations, seeding) use it so they do not need JWT_SECRET.
func Read() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SUMMARY_CACHE_TTL", "24h")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "meetlog")
	v.SetDefault("JWT_ACCESS_TTL", "30m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	v.SetDefault("SUMMARY_MAX_INPUT_CHARS", 10000)
	v.SetDefault("DEFAULT_PER_PAGE", 10)
	v.SetDefault("MAX_PER_PAGE", 100)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 10)
	v.SetDefault("API_RATE_PER_MINUTE", 300)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return errors.New("config: SERVER_PORT must be between 1 and 65535")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.Environment == "production" && len(c.JWTSecret) < 32 {
		return errors.New("config: JWT_SECRET must be at least 32 bytes when APP_ENV=production")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.DefaultPerPage < 1 || c.MaxPerPage < c.DefaultPerPage {
		return errors.New("config: DEFAULT_PER_PAGE must be >= 1 and <= MAX_PER_PAGE")
	}
	if c.SummaryMaxInputChars < 1 {
		return errors.New("config: SUMMARY_MAX_INPUT_CHARS must be positive")
	}
	return nil
}

// AccessTTL parses JWTAccessTTL. Returns 30m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return parseDuration(c.JWTAccessTTL, 30*time.Minute)
}

// ConnMaxLifetime parses DBConnLifetime. Returns 5m if unset or invalid.
func (c *Config) ConnMaxLifetime() time.Duration {
	return parseDuration(c.DBConnLifetime, 5*time.Minute)
}

// CacheTTL parses SummaryCacheTTL. Returns 24h if unset or invalid.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.SummaryCacheTTL, 24*time.Hour)
}

// CORSAllowedOrigins returns the comma-separated origins as a slice.
func (c *Config) CORSAllowedOrigins() []string {
	if c == nil {
		return nil
	}
	return splitCSV(c.CORSOrigins)
}

// TrustedProxyList returns the comma-separated trusted proxies as a slice.
func (c *Config) TrustedProxyList() []string {
	if c == nil {
		return nil
	}
	return splitCSV(c.TrustedProxies)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
