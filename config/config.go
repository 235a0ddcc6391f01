package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: HTTP server and cookie configuration
//   - redis.go: Redis connection (sessions, cart snapshots, catalog cache)
//   - backend.go: remote storefront API client
//   - session.go: session lifetime and revalidation
//   - store.go: cart and catalog behavior
//   - services.go: which processes run in this binary
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, insecure cookies).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Redis holds sessions, cart snapshots and the catalog cache.
	Redis RedisConfig `envPrefix:"REDIS_"`

	// Remote API
	Backend BackendConfig `envPrefix:"BACKEND_"`

	// Session lifetime
	Session SessionConfig `envPrefix:"SESSION_"`

	// Cart and catalog behavior
	Store StoreConfig

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.HTTP.Sanitize(c.IsDev)
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.Store.Sanitize()
	c.Observability.Sanitize()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsCatalogWarmerEnabled returns true if the catalog cache warmer is enabled.
func (c *AppConfig) IsCatalogWarmerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeCatalogWarmer]
}
