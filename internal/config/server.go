package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	// PostgresDSN is optional; when empty the server runs on the in-memory
	// store and sessions do not survive a restart.
	PostgresDSN string `env:"POSTGRES_DSN"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	ReconnectGraceSecs int `env:"RECONNECT_GRACE_SECONDS" envDefault:"60"`
	CleanupDelayMins   int `env:"CLEANUP_DELAY_MINUTES" envDefault:"60"`
	ChatHistoryLimit   int `env:"CHAT_HISTORY_LIMIT" envDefault:"50"`

	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"diamondduel"`
	AllowAnyOrigin   bool   `env:"ALLOW_ANY_ORIGIN" envDefault:"true"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func (c ServerConfig) ReconnectGrace() time.Duration {
	return time.Duration(c.ReconnectGraceSecs) * time.Second
}

func (c ServerConfig) CleanupDelay() time.Duration {
	return time.Duration(c.CleanupDelayMins) * time.Minute
}
