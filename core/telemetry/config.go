package telemetry

// Config holds tracing configuration.
type Config struct {
	// Enabled turns on span export. When false the global no-op provider stays in place.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `mapstructure:"service_name" default:"cryptogram-sync"`
	// ServiceVersion is reported as the service.version resource attribute.
	ServiceVersion string `mapstructure:"service_version" default:"1.0.0"`
	// PrettyPrint indents exported spans.
	PrettyPrint bool `mapstructure:"pretty_print" default:"false"`
}
