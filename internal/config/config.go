package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	JWT       JWTConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" envconfig:"LOG_PRETTY"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port" envconfig:"PORT"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds" envconfig:"TIMEOUT_SECONDS"`
}

type UpstreamConfig struct {
	BaseURL             string `mapstructure:"base_url" envconfig:"UPSTREAM_BASE_URL"`
	TimeoutSeconds      int    `mapstructure:"timeoutSeconds" envconfig:"UPSTREAM_TIMEOUT_SECONDS"`
	BreakerMaxFailures  int    `mapstructure:"breaker_max_failures" envconfig:"UPSTREAM_BREAKER_MAX_FAILURES"`
	BreakerResetSeconds int    `mapstructure:"breaker_reset_seconds" envconfig:"UPSTREAM_BREAKER_RESET_SECONDS"`
}

type JWTConfig struct {
	// Secret is shared with the backend so the gateway can verify the
	// tokens it hands back at login.
	Secret string `mapstructure:"secret" envconfig:"JWT_SECRET"`
}

type SessionConfig struct {
	// Store selects the session backend: "memory" or "redis".
	Store    string `mapstructure:"store" envconfig:"SESSION_STORE"`
	TTLHours int    `mapstructure:"ttl_hours" envconfig:"SESSION_TTL_HOURS"`
	RedisURL string `mapstructure:"redis_url" envconfig:"SESSION_REDIS_URL"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" envconfig:"RATE_LIMIT_RPS"`
	Burst int     `mapstructure:"burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoadConfig reads config.yaml and overlays GATEWAY_* environment variables.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("gateway", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	config.applyDefaults()

	if config.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = 15
	}
	if c.Upstream.BreakerMaxFailures == 0 {
		c.Upstream.BreakerMaxFailures = 5
	}
	if c.Upstream.BreakerResetSeconds == 0 {
		c.Upstream.BreakerResetSeconds = 30
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.TTLHours == 0 {
		c.Session.TTLHours = 24
	}
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = 100
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 200
	}
}
