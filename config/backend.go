package config

import (
	"strings"
	"time"
)

// BackendConfig configures the client for the remote storefront API.
type BackendConfig struct {
	// BaseURL is the API root; every endpoint path is appended to it.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080/api"`

	// Timeout bounds each request, including reading the response.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	// RetryAttempts is the total number of tries for idempotent GETs.
	RetryAttempts        int           `env:"RETRY_ATTEMPTS"         envDefault:"3"`
	RetryInitialInterval time.Duration `env:"RETRY_INITIAL_INTERVAL" envDefault:"200ms"`
	RetryMaxInterval     time.Duration `env:"RETRY_MAX_INTERVAL"     envDefault:"2s"`

	UserAgent string `env:"USER_AGENT" envDefault:"parapharmacie-storefront"`
}

// Sanitize applies guardrails to backend client configuration.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
	if b.RetryAttempts < 1 {
		b.RetryAttempts = 1
	}
	if b.RetryAttempts > 5 {
		b.RetryAttempts = 5
	}
	if b.RetryInitialInterval <= 0 {
		b.RetryInitialInterval = 200 * time.Millisecond
	}
	if b.RetryMaxInterval < b.RetryInitialInterval {
		b.RetryMaxInterval = b.RetryInitialInterval
	}
}
