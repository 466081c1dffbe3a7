package config

import (
	"golang-futures-bot/pkg/config"
)

// Trading holds simulator-specific configuration.
type Trading struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
	MaxLeverage    int     `mapstructure:"max_leverage"`
	SweepInterval  string  `mapstructure:"sweep_interval"`
}

// Config holds the full configuration for the trading service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Telegram config.Telegram `mapstructure:"telegram"`
	Binance  config.Binance  `mapstructure:"binance"`
	Trading  Trading         `mapstructure:"trading"`
}

// Load loads the trading service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Trading.InitialBalance == 0 {
		cfg.Trading.InitialBalance = 10000
	}
	if cfg.Trading.MaxLeverage == 0 {
		cfg.Trading.MaxLeverage = 125
	}
	if cfg.Trading.SweepInterval == "" {
		cfg.Trading.SweepInterval = "10s"
	}
	return &cfg, nil
}
