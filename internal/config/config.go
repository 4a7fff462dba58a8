package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
		APIKey  string `yaml:"api_key"`
		// RateLimit is requests per second per server; RateBurst tops it up.
		RateLimit float64 `yaml:"rate_limit"`
		RateBurst int     `yaml:"rate_burst"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Google struct {
		CredentialsFile     string `yaml:"credentials_file"`
		CalendarID          string `yaml:"calendar_id"`
		SyncIntervalMinutes int    `yaml:"sync_interval_minutes"`
		SyncHorizonDays     int    `yaml:"sync_horizon_days"`
	} `yaml:"google"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Booking struct {
		SlotDurationMinutes int `yaml:"slot_duration_minutes"`
		MaxRangeDays        int `yaml:"max_range_days"`
	} `yaml:"booking"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/slotbook.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) SlotDuration() int {
	if c.Booking.SlotDurationMinutes <= 0 {
		return 30
	}
	return c.Booking.SlotDurationMinutes
}

func (c *Config) MaxRangeDays() int {
	if c.Booking.MaxRangeDays <= 0 {
		return 90
	}
	return c.Booking.MaxRangeDays
}

func (c *Config) SyncInterval() time.Duration {
	if c.Google.SyncIntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Google.SyncIntervalMinutes) * time.Minute
}

func (c *Config) SyncHorizon() time.Duration {
	if c.Google.SyncHorizonDays <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(c.Google.SyncHorizonDays) * 24 * time.Hour
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}
