package config

import "github.com/caarlos0/env/v11"

// LogConfig tunes the game server's zerolog output. File rotation is a hard
// size cap, not time based; match sessions are short-lived and the capped
// file is enough to hold the recent ones.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
}

// LoadLog reads the logging settings from the environment.
func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
