package config

import "time"

type SessionConfig interface {
	GetMonitorInterval() time.Duration
	GetDefaultSessionLifetime() time.Duration
}

type Session struct {
	MonitorInterval time.Duration `env:"SESSION_MONITOR_INTERVAL" envDefault:"60s"`
	DefaultLifetime time.Duration `env:"SESSION_DEFAULT_LIFETIME" envDefault:"1h"`
}

var _ SessionConfig = Session{}

func (s Session) GetMonitorInterval() time.Duration {
	return s.MonitorInterval
}

// GetDefaultSessionLifetime is used when the login response omits expiresIn.
func (s Session) GetDefaultSessionLifetime() time.Duration {
	return s.DefaultLifetime
}
