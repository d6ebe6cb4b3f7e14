package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Inventory InventoryConfig `yaml:"inventory" validate:"required"`
	Push      PushConfig      `yaml:"push" validate:"required"`
	Hold      HoldConfig      `yaml:"hold"`
}

type InventoryConfig struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
	BearerToken    string `yaml:"bearer_token"`
}

func (c InventoryConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type PushConfig struct {
	Transport string          `yaml:"transport" validate:"oneof=websocket redis"`
	Redis     RedisConfig     `yaml:"redis"`
	Websocket WebsocketConfig `yaml:"websocket"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type WebsocketConfig struct {
	URL                     string `yaml:"url"`
	ReconnectBackoffSeconds int    `yaml:"reconnect_backoff_seconds" validate:"gte=0"`
}

func (c WebsocketConfig) ReconnectBackoff() time.Duration {
	if c.ReconnectBackoffSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ReconnectBackoffSeconds) * time.Second
}

type HoldConfig struct {
	TTLSeconds int `yaml:"ttl_seconds" validate:"gte=0"`
}

// TTL is the local countdown duration. It must match the authoritative
// server-side hold duration; the server holds seats for 120 seconds.
func (c HoldConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Push.Transport == "" {
		cfg.Push.Transport = "websocket"
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
