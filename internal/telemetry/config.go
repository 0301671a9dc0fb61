// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the chat service.
package telemetry

// Config is the `telemetry:` section of the configuration file.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	// Default: "careerai".
	ServiceName string `yaml:"service_name"`

	// OTLPEndpoint is an OTLP/HTTP traces URL such as
	// "http://localhost:4318/v1/traces". Empty disables trace export.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// OTLPHeaders are sent with every export request (e.g. an api key).
	OTLPHeaders map[string]string `yaml:"otlp_headers"`

	// SampleRate is the fraction of root traces recorded. Default 1.0.
	SampleRate float64 `yaml:"sample_rate"`

	// Metrics enables the /metrics endpoint. Default true.
	Metrics *bool `yaml:"metrics"`
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = "careerai"
	}
	if c.SampleRate <= 0 || c.SampleRate > 1 {
		c.SampleRate = 1
	}
	return c
}

// MetricsEnabled reports whether the metrics endpoint should be served.
func (c Config) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}
