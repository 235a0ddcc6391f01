package config

import "strings"

// ObservabilityConfig groups configuration that controls metrics and tracing.
type ObservabilityConfig struct {
	Metrics ObservabilityMetricsConfig
	Tracing ObservabilityTracingConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Tracing.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to external sinks such as StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"storefront"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// ObservabilityTracingConfig controls OpenTelemetry instrumentation of inbound
// requests and backend calls.
type ObservabilityTracingConfig struct {
	Enabled bool `env:"OBSERVABILITY_TRACING_ENABLED" envDefault:"false"`
	// Endpoint is the OTLP/HTTP collector host:port. Empty keeps spans in-process only.
	Endpoint    string `env:"OBSERVABILITY_TRACING_ENDPOINT"     envDefault:""`
	Insecure    bool   `env:"OBSERVABILITY_TRACING_INSECURE"     envDefault:"true"`
	ServiceName string `env:"OBSERVABILITY_TRACING_SERVICE_NAME" envDefault:"parapharmacie-storefront"`
}

// Sanitize normalises tracing configuration.
func (c *ObservabilityTracingConfig) Sanitize() {
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.ServiceName = strings.TrimSpace(c.ServiceName); c.ServiceName == "" {
		c.ServiceName = "parapharmacie-storefront"
	}
}
