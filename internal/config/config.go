// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and SCALESYNC_* env vars over the defaults.
// - Loaded values are checked with struct tags; failures wrap ErrInvalidConfig.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// StoreDriver selects where records live: memory, sqlite or postgres.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory sqlite postgres"`

	// StoreDSN is the sqlite file path or postgres connection string.
	StoreDSN string `koanf:"store_dsn" validate:"required_unless=StoreDriver memory"`

	// MaxUploadBytes caps the body of POST /imports.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"gt=0"`

	// Epsilon is the tolerance under which two readings count as unchanged.
	Epsilon float64 `koanf:"epsilon" validate:"gte=0"`

	// ReconcileConcurrency bounds how many dates are written at once; 1 is sequential.
	ReconcileConcurrency int `koanf:"reconcile_concurrency" validate:"gte=1,lte=64"`

	// Completeness tolerances.
	RawMissingTolerance          int `koanf:"raw_missing_tolerance" validate:"gte=0"`
	PreprocessedMissingTolerance int `koanf:"preprocessed_missing_tolerance" validate:"gte=0"`
	PreprocessedZeroTolerance    int `koanf:"preprocessed_zero_tolerance" validate:"gte=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                     "info",
		LogFormat:                    "text",
		Addr:                         ":9080",
		StoreDriver:                  "memory",
		MaxUploadBytes:               10 << 20,
		Epsilon:                      0.0001,
		ReconcileConcurrency:         1,
		RawMissingTolerance:          3,
		PreprocessedMissingTolerance: 3,
		PreprocessedZeroTolerance:    5,
	}
}
