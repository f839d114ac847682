package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "FORMAT_CONVERTER_CONFIG"
	listenAddrEnv        = "LISTEN_ADDR"
	logLevelEnv          = "LOG_LEVEL"
	logFormatEnv         = "LOG_FORMAT"
	databaseDriverEnv    = "DATABASE_DRIVER"
	databaseDSNEnv       = "DATABASE_DSN"
	cacheBackendEnv      = "CACHE_BACKEND"
	openAIAPIKeyEnv      = "OPENAI_API_KEY"
	openAIModelEnv       = "OPENAI_MODEL"
	openAIBaseURLEnv     = "OPENAI_BASE_URL"
	singleFlightEnv      = "CONVERSION_SINGLE_FLIGHT"
	tokenSecretEnv       = "TOKEN_SECRET"
	adminUserEnv         = "ADMIN_USER"
	adminPasswordHashEnv = "ADMIN_PASSWORD_HASH"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendSQL    = "sql"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Conversion ConversionConfig `yaml:"conversion"`
	Auth       AuthConfig       `yaml:"auth"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the HTTP listener and per-client rate limit.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RateLimit       float64       `yaml:"rateLimit"`
	RateBurst       int           `yaml:"rateBurst"`
}

// DatabaseConfig describes the article store connection.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig describes where conversions are kept and for how long.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	Capacity      int           `yaml:"capacity"`
	PurgeInterval time.Duration `yaml:"purgeInterval"`
}

// OpenAIConfig defines how to contact the chat completions API.
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	BaseURL string `yaml:"baseUrl"`
	Model   string `yaml:"model"`
}

// ConversionConfig tunes the AP rewrite workflow.
type ConversionConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	SingleFlight bool          `yaml:"singleFlight"`
}

// AuthConfig holds the request-token secret and administrator credentials.
type AuthConfig struct {
	TokenSecret       string        `yaml:"tokenSecret"`
	TokenTTL          time.Duration `yaml:"tokenTtl"`
	AdminUser         string        `yaml:"adminUser"`
	AdminPasswordHash string        `yaml:"adminPasswordHash"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{listenAddrEnv, &c.Server.Addr},
		{logLevelEnv, &c.Logging.Level},
		{logFormatEnv, &c.Logging.Format},
		{databaseDriverEnv, &c.Database.Driver},
		{databaseDSNEnv, &c.Database.DSN},
		{cacheBackendEnv, &c.Cache.Backend},
		{openAIAPIKeyEnv, &c.OpenAI.APIKey},
		{openAIModelEnv, &c.OpenAI.Model},
		{openAIBaseURLEnv, &c.OpenAI.BaseURL},
		{tokenSecretEnv, &c.Auth.TokenSecret},
		{adminUserEnv, &c.Auth.AdminUser},
		{adminPasswordHashEnv, &c.Auth.AdminPasswordHash},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}

	if v := os.Getenv(singleFlightEnv); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("config: ignoring %s=%q: %v", singleFlightEnv, v, err)
		} else {
			c.Conversion.SingleFlight = enabled
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if override.Server.RateLimit > 0 {
		base.Server.RateLimit = override.Server.RateLimit
	}
	if override.Server.RateBurst > 0 {
		base.Server.RateBurst = override.Server.RateBurst
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
		if base.Database.Driver == "" {
			base.Database.Driver = defaultConfig().Database.Driver
		}
	}

	if override.Cache.Backend != "" {
		base.Cache.Backend = override.Cache.Backend
	}
	if override.Cache.TTL > 0 {
		base.Cache.TTL = override.Cache.TTL
	}
	if override.Cache.Capacity > 0 {
		base.Cache.Capacity = override.Cache.Capacity
	}
	if override.Cache.PurgeInterval > 0 {
		base.Cache.PurgeInterval = override.Cache.PurgeInterval
	}

	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}

	if override.Conversion.Timeout > 0 {
		base.Conversion.Timeout = override.Conversion.Timeout
	}
	if override.Conversion.SingleFlight {
		base.Conversion.SingleFlight = true
	}

	if override.Auth.TokenSecret != "" {
		base.Auth.TokenSecret = override.Auth.TokenSecret
	}
	if override.Auth.TokenTTL > 0 {
		base.Auth.TokenTTL = override.Auth.TokenTTL
	}
	if override.Auth.AdminUser != "" {
		base.Auth.AdminUser = override.Auth.AdminUser
	}
	if override.Auth.AdminPasswordHash != "" {
		base.Auth.AdminPasswordHash = override.Auth.AdminPasswordHash
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       1,
			RateBurst:       5,
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "format-converter.db"},
		Cache: CacheConfig{
			Backend:       CacheBackendSQL,
			TTL:           24 * time.Hour,
			Capacity:      10000,
			PurgeInterval: time.Hour,
		},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Conversion: ConversionConfig{Timeout: 60 * time.Second},
		Auth:       AuthConfig{TokenTTL: 12 * time.Hour},
	}
}
