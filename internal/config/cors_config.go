package config

type CorsConfig interface {
	GetAllowedOrigins() []string
	GetAllowedMethods() []string
	GetAllowedHeaders() []string
}

type Cors struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

var _ CorsConfig = Cors{}

func (c Cors) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

func (Cors) GetAllowedMethods() []string {
	return []string{"GET", "POST"}
}

func (Cors) GetAllowedHeaders() []string {
	return []string{"Content-Type", "Authorization", "X-Tenant-ID"}
}
