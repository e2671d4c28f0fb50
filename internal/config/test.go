package config

import "github.com/caarlos0/env/v11"

// TestConfig holds settings only the test suite reads. The postgres store
// tests skip entirely when LoadTest fails, so a plain `go test ./...` never
// needs a database.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
