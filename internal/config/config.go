// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file, and MATCHDESK_ env vars.
// - Errors returned from this package wrap ErrLoadConfig or ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// StorePath is the authoritative CSV assignment store.
	StorePath string `koanf:"store_path"`

	// ExportPath receives the structured JSON mirror of the store. Empty disables it.
	ExportPath string `koanf:"export_path"`

	// MetricsPath receives a Prometheus textfile at exit. Empty disables it.
	MetricsPath string `koanf:"metrics_path"`

	// Locale is the BCP 47 tag used to format counts in the console.
	Locale string `koanf:"locale"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		StorePath:   "database.csv",
		ExportPath:  "database.json",
		MetricsPath: "",
		Locale:      "en",
	}
}
