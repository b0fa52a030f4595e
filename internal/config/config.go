package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds server configuration
type Config struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`

	// StorageType selects the room document backend: "memory" or "redis"
	StorageType string        `mapstructure:"storage_type"`
	RedisURL    string        `mapstructure:"redis_url"`
	RoomTTL     time.Duration `mapstructure:"room_ttl"`

	// MatchDuration is how long a match runs once the start gate opens
	MatchDuration time.Duration `mapstructure:"match_duration"`

	// Reaper policy
	ReaperInterval time.Duration `mapstructure:"reaper_interval"`
	MaxLobbyAge    time.Duration `mapstructure:"max_lobby_age"`
	FinishedGrace  time.Duration `mapstructure:"finished_grace"`
}

// Load reads configuration from an optional config.yaml plus GUMBALL_*
// environment variable overrides, falling back to defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("GUMBALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("host", "")
	v.SetDefault("port", 8080)
	v.SetDefault("storage_type", "memory")
	v.SetDefault("redis_url", "redis://localhost:6379")
	v.SetDefault("room_ttl", "24h")
	v.SetDefault("match_duration", "3m")
	v.SetDefault("reaper_interval", "1m")
	v.SetDefault("max_lobby_age", "30m")
	v.SetDefault("finished_grace", "15m")

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env are enough
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
