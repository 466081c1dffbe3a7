package config

import (
	"golang-futures-bot/pkg/config"
)

// SmsAPI holds the SMS viewing API configuration.
type SmsAPI struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Records int    `mapstructure:"records"`
	Timeout string `mapstructure:"timeout"`
}

// Relay holds relay-specific configuration.
type Relay struct {
	PollInterval     string `mapstructure:"poll_interval"`
	ForwardDelay     string `mapstructure:"forward_delay"`
	SeenStore        string `mapstructure:"seen_store"` // "file" or "redis"
	SeenFile         string `mapstructure:"seen_file"`
	DestinationsFile string `mapstructure:"destinations_file"`
}

// Config holds the full configuration for the SMS relay service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	SmsAPI   SmsAPI          `mapstructure:"sms_api"`
	Relay    Relay           `mapstructure:"relay"`
}

// Load loads the relay configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.SmsAPI.Records == 0 {
		cfg.SmsAPI.Records = 10
	}
	if cfg.SmsAPI.Timeout == "" {
		cfg.SmsAPI.Timeout = "10s"
	}
	if cfg.Relay.PollInterval == "" {
		cfg.Relay.PollInterval = "5s"
	}
	if cfg.Relay.ForwardDelay == "" {
		cfg.Relay.ForwardDelay = "1s"
	}
	if cfg.Relay.SeenStore == "" {
		cfg.Relay.SeenStore = "file"
	}
	if cfg.Relay.SeenFile == "" {
		cfg.Relay.SeenFile = "seen_sms_ids.json"
	}
	if cfg.Relay.DestinationsFile == "" {
		cfg.Relay.DestinationsFile = "destinations.json"
	}
	return &cfg, nil
}
