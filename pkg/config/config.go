package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Cache backing store: "file", "redis" or "sql"
	CacheBackend string `mapstructure:"CACHE_BACKEND"`
	CacheDir     string `mapstructure:"CACHE_DIR"`
	RedisURL     string `mapstructure:"REDIS_URL"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`

	// Stats provider
	ProviderTimeout  time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	ProviderRetries  int           `mapstructure:"PROVIDER_RETRIES"`
	ProviderBackoff  time.Duration `mapstructure:"PROVIDER_BACKOFF"`
	ProviderRate     float64       `mapstructure:"PROVIDER_RATE"`
	ProviderBurst    int           `mapstructure:"PROVIDER_BURST"`
	BreakerThreshold uint32        `mapstructure:"BREAKER_THRESHOLD"`

	// Aggregation defaults
	DefaultSeason      string `mapstructure:"DEFAULT_SEASON"`
	DefaultRoleMode    string `mapstructure:"DEFAULT_ROLE_MODE"`
	DefaultSeasonTypes string `mapstructure:"DEFAULT_SEASON_TYPES"`
	DefaultExcludeDNP  bool   `mapstructure:"DEFAULT_EXCLUDE_DNP"`

	// Cache warmer
	WarmOnStartup bool   `mapstructure:"WARM_ON_STARTUP"`
	WarmSchedule  string `mapstructure:"WARM_SCHEDULE"`

	// Matchup
	MinutesFloor float64 `mapstructure:"MINUTES_FLOOR"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("CACHE_BACKEND", "file")
	viper.SetDefault("CACHE_DIR", "./cache")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	viper.SetDefault("DATABASE_URL", "./cache.db")
	viper.SetDefault("PROVIDER_TIMEOUT", "60s")
	viper.SetDefault("PROVIDER_RETRIES", 3)
	viper.SetDefault("PROVIDER_BACKOFF", "1s")
	viper.SetDefault("PROVIDER_RATE", 5)   // requests per second
	viper.SetDefault("PROVIDER_BURST", 3)
	viper.SetDefault("BREAKER_THRESHOLD", 5)
	viper.SetDefault("DEFAULT_SEASON", "2025-26")
	viper.SetDefault("DEFAULT_ROLE_MODE", "either")
	viper.SetDefault("DEFAULT_SEASON_TYPES", "Regular Season")
	viper.SetDefault("DEFAULT_EXCLUDE_DNP", false)
	viper.SetDefault("WARM_ON_STARTUP", false)
	viper.SetDefault("WARM_SCHEDULE", "")
	viper.SetDefault("MINUTES_FLOOR", 20.0)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
