package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Port is the network port the message API binds to.
	Port int `koanf:"port" validate:"required,gte=1,lt=65535"`

	// DBPath is the path of the persistent state database.
	DBPath string `koanf:"db_path" validate:"required"`

	// CacheSize bounds the per-hostname verdict cache.
	CacheSize uint `koanf:"cache_size" validate:"required,gte=1"`

	// SweepInterval is how often expired block records are reaped.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"required"`

	// BlockRetention is how long an automatic block record lives.
	BlockRetention time.Duration `koanf:"block_retention" validate:"required"`

	// GeoAPIURL is the base URL of the geolocation lookup service.
	GeoAPIURL string `koanf:"geo_api_url" validate:"required,url"`

	// GeoTimeout bounds a single geolocation lookup.
	GeoTimeout time.Duration `koanf:"geo_timeout" validate:"required"`

	// DisableGeo turns off scan enrichment entirely. Useful for testing
	// scenarios where outbound lookups must not happen.
	DisableGeo bool `koanf:"disable_geo"`

	// ShieldPath is the local shield resource blocked tabs are sent to.
	ShieldPath string `koanf:"shield_path" validate:"required,startswith=/"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings
// for the guard daemon. It includes default values for the runtime
// environment, log level, listening port, state database path, cache size,
// sweep cadence, block retention, and the geolocation service.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:            "prod",
	LogLevel:       "info",
	Port:           8790,
	DBPath:         "/var/lib/cyberguard/state.db",
	CacheSize:      512,
	SweepInterval:  5 * time.Minute,
	BlockRetention: 24 * time.Hour,
	GeoAPIURL:      "http://ip-api.com",
	GeoTimeout:     5 * time.Second,
	DisableGeo:     false,
	ShieldPath:     "/shield",
}

// envLoader is a function that loads environment variables with the prefix
// "GUARD_". It transforms the keys to lowercase and removes the prefix,
// and can be mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: "GUARD_",
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, "GUARD_"))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads default configuration values into the provided Koanf
// instance using the structs provider and the DEFAULT_APP_CONFIG struct.
// It returns an error if loading fails.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := defaultLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	err = envLoader(k)
	if err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig

	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	err = validate.Struct(&cfg)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
