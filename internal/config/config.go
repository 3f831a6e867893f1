package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	StorageConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Storage
	Cors
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c mainConfig
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config.Load] %w", err)
	}
	return c, nil
}

// LoadFrom parses the given environment only, ignoring the process environment.
func LoadFrom(environment map[string]string) (Config, error) {
	var c mainConfig
	if err := env.ParseWithOptions(&c, env.Options{Environment: environment}); err != nil {
		return nil, fmt.Errorf("[config.LoadFrom] %w", err)
	}
	return c, nil
}

// Default returns the configuration with every default applied.
func Default() Config {
	c, err := LoadFrom(map[string]string{})
	if err != nil {
		panic(err)
	}
	return c
}
