package naturalorder

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	DB      DBConfig      `toml:"db"`
	Catalog CatalogConfig `toml:"catalog"`
	Push    PushConfig    `toml:"push"`
	Feed    FeedConfig    `toml:"feed"`
	Matcher MatcherConfig `toml:"matcher"`
	Spaces  struct {
		Key       string `toml:"key"`
		Secret    string `toml:"secret"`
		Region    string `toml:"region"`
		Bucket    string `toml:"bucket"`
		PhotoRoot string `toml:"photoroot"`
	} `toml:"spaces"`
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      int      `toml:"rate_limit"` // requests per minute per IP, 0 disables
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type CatalogConfig struct {
	BaseURL   string `toml:"base_url"`
	CacheSize int    `toml:"cache_size"`
	TimeoutMS int    `toml:"timeout_ms"`
}

type PushConfig struct {
	GatewayURL string `toml:"gateway_url"`
	AuthToken  string `toml:"auth_token"`
}

// FeedConfig points at an optional Discord webhook used as a public
// trade-activity feed for the collector community.
type FeedConfig struct {
	WebhookID    snowflake.ID `toml:"webhook_id"`
	WebhookToken string       `toml:"webhook_token"`
}

type MatcherConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	Workers         int `toml:"workers"`
}
