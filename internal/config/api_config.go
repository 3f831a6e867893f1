package config

import "time"

type APIConfig interface {
	GetAPIBaseURL() string
	GetTenantID() string
	GetRequestTimeout() time.Duration
}

// API describes the remote authentication service.
type API struct {
	BaseURL        string        `env:"API_BASE_URL" envDefault:"http://localhost:9000/api"`
	TenantID       string        `env:"TENANT_ID"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return a.BaseURL
}

// GetTenantID returns the organisation identifier sent with every request, if any.
func (a API) GetTenantID() string {
	return a.TenantID
}

func (a API) GetRequestTimeout() time.Duration {
	return a.RequestTimeout
}
