package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	GenAI     GenAIConfig     `mapstructure:"genai"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// ServerConfig defines server ports and addresses
type ServerConfig struct {
	BindAddress     string   `mapstructure:"bind_address"`
	HTTPPort        int      `mapstructure:"http_port"`
	MetricsPort     int      `mapstructure:"metrics_port"`
	PublicURL       string   `mapstructure:"public_url"` // Base URL for file links; derived from the request when empty
	ReadTimeout     string   `mapstructure:"read_timeout"`
	WriteTimeout    string   `mapstructure:"write_timeout"`
	ShutdownTimeout string   `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimit       int      `mapstructure:"rate_limit"`
	RateLimitWindow string   `mapstructure:"rate_limit_window"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "sqlite", "bolt" or "redis"
	Path  string      `mapstructure:"path"` // Database file for sqlite and bolt
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig defines bearer token verification against the identity provider
type AuthConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	Domain                string `mapstructure:"domain"`      // Identity provider tenant, e.g. example.eu.auth0.com
	Audience              string `mapstructure:"audience"`    // Expected "aud" claim
	Issuer                string `mapstructure:"issuer"`      // Defaults to https://<domain>/
	JWKSURL               string `mapstructure:"jwks_url"`    // Defaults to https://<domain>/.well-known/jwks.json
	HMACSecret            string `mapstructure:"hmac_secret"` // Enables HS256 verification instead of JWKS
	JWKSCacheSize         int    `mapstructure:"jwks_cache_size"`
	JWKSCacheTTL          string `mapstructure:"jwks_cache_ttl"`
	JWKSRequestsPerMinute int    `mapstructure:"jwks_requests_per_minute"`
}

// GenAIConfig defines the generative AI summarization client
type GenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// UploadsConfig defines where uploaded documents are kept
type UploadsConfig struct {
	Dir       string `mapstructure:"dir"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// AnalyticsConfig defines dashboard aggregation settings
type AnalyticsConfig struct {
	Timezone      string `mapstructure:"timezone"`       // IANA name or "Local"
	SessionLength string `mapstructure:"session_length"` // Assumed duration of one session
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	SetDefaults(v)

	// Configure viper
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("ZENGENIUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.bind_address", "0.0.0.0")
	v.SetDefault("server.http_port", 5000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_limit_window", "1m")

	// Storage defaults
	v.SetDefault("storage.type", "sqlite")
	v.SetDefault("storage.path", "/var/lib/zengenius/zengenius.db")
	v.SetDefault("storage.redis.host", "localhost")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 5)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Auth defaults
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.domain", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.jwks_url", "")
	v.SetDefault("auth.hmac_secret", "")
	v.SetDefault("auth.jwks_cache_size", 16)
	v.SetDefault("auth.jwks_cache_ttl", "10m")
	v.SetDefault("auth.jwks_requests_per_minute", 5)

	// GenAI defaults
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "gemini-1.5-flash")
	v.SetDefault("genai.timeout", "60s")

	// Upload defaults
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_size_mb", 20)
	v.SetDefault("uploads.url_prefix", "/uploads")

	// Analytics defaults
	v.SetDefault("analytics.timezone", "Local")
	v.SetDefault("analytics.session_length", "30m")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.MetricsPort < 0 || cfg.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.Server.MetricsPort)
	}

	for name, d := range map[string]string{
		"server.read_timeout":      cfg.Server.ReadTimeout,
		"server.write_timeout":     cfg.Server.WriteTimeout,
		"server.shutdown_timeout":  cfg.Server.ShutdownTimeout,
		"server.rate_limit_window": cfg.Server.RateLimitWindow,
		"genai.timeout":            cfg.GenAI.Timeout,
		"analytics.session_length": cfg.Analytics.SessionLength,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, d, err)
		}
	}

	switch cfg.Storage.Type {
	case "":
		cfg.Storage.Type = "sqlite"
		fallthrough
	case "sqlite", "bolt":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage path is required")
		}
		// Ensure storage directory exists
		storageDir := filepath.Dir(cfg.Storage.Path)
		if err := os.MkdirAll(storageDir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("storage.redis.host is required")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s (expected 'sqlite', 'bolt' or 'redis')", cfg.Storage.Type)
	}

	if cfg.Auth.Enabled {
		if cfg.Auth.HMACSecret == "" && cfg.Auth.Domain == "" && cfg.Auth.JWKSURL == "" {
			return fmt.Errorf("auth is enabled but neither auth.domain, auth.jwks_url nor auth.hmac_secret is set")
		}
		if cfg.Auth.Domain != "" {
			if cfg.Auth.Issuer == "" {
				cfg.Auth.Issuer = fmt.Sprintf("https://%s/", cfg.Auth.Domain)
			}
			if cfg.Auth.JWKSURL == "" && cfg.Auth.HMACSecret == "" {
				cfg.Auth.JWKSURL = fmt.Sprintf("https://%s/.well-known/jwks.json", cfg.Auth.Domain)
			}
		}
	}

	if _, err := cfg.Analytics.Location(); err != nil {
		return fmt.Errorf("invalid analytics.timezone %q: %w", cfg.Analytics.Timezone, err)
	}

	if cfg.Uploads.Dir == "" {
		return fmt.Errorf("uploads directory is required")
	}
	if cfg.Uploads.MaxSizeMB <= 0 {
		return fmt.Errorf("invalid uploads.max_size_mb: %d", cfg.Uploads.MaxSizeMB)
	}

	return nil
}

// Location resolves the configured analytics timezone.
func (a AnalyticsConfig) Location() (*time.Location, error) {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(a.Timezone)
}

// ParseDuration parses a duration string with a fallback
func ParseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
