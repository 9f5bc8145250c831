package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default API base URLs per environment. Overridable via
// STOREFRONT_API_BASE_URL or the config file.
var defaultBaseURLs = map[string]string{
	EnvDevelopment: "http://127.0.0.1:8000/api",
	EnvStaging:     "https://api.staging.bincshop.com/api",
	EnvProduction:  "https://api.bincshop.com/api",
}

type Config struct {
	// Environment selects the build-time environment designation:
	// "development", "staging" or "production".
	Environment string `env:"STOREFRONT_ENV, default=production" yaml:"environment"`

	// File is the path to an optional YAML configuration file, applied over
	// the environment-derived defaults.
	File string `env:"STOREFRONT_CONFIG" yaml:"-"`

	API     APIConfig     `yaml:"api"`
	Cache   CacheConfig   `yaml:"cache"`
	HTTP    HTTPConfig    `yaml:"http"`
	Observe ObserveConfig `yaml:"observe"`
	Session SessionConfig `yaml:"session"`
}

type APIConfig struct {
	// BaseURL is the root of the storefront REST API. When empty, the
	// environment default is used.
	BaseURL string `env:"STOREFRONT_API_BASE_URL" yaml:"base_url"`

	// TimeoutSeconds bounds each outgoing request. Requests exceeding it are
	// aborted and surfaced as timeout errors.
	TimeoutSeconds int `env:"STOREFRONT_API_TIMEOUT_SECS, default=30" yaml:"timeout_seconds"`
}

func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig specifies the service-layer response cache.
type CacheConfig struct {
	// TTLSeconds is the validity window for a cache entry. Expired entries
	// are treated as absent.
	TTLSeconds int `env:"STOREFRONT_CACHE_TTL_SECS, default=300" yaml:"ttl_seconds"`

	// MaxEntries bounds the cache; entries beyond this size are evicted.
	MaxEntries int `env:"STOREFRONT_CACHE_MAX_ENTRIES, default=10000" yaml:"max_entries"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type HTTPConfig struct {
	MaxIdleConns    int `env:"STOREFRONT_HTTP_MAX_IDLE_CONNS, default=100" yaml:"max_idle_conns"`
	MaxConnsPerHost int `env:"STOREFRONT_HTTP_MAX_CONNS_PER_HOST, default=20" yaml:"max_conns_per_host"`
}

type ObserveConfig struct {
	SDKLogLevel               string `env:"OBSERVE_OTEL_LOG_LEVEL, default=info" yaml:"sdk_log_level"`
	Enabled                   bool   `env:"OBSERVE_ENABLED, default=false" yaml:"enabled"`
	MetricsEnabled            bool   `env:"OBSERVE_METRICS_ENABLED, default=true" yaml:"metrics_enabled"`
	Type                      string `env:"OBSERVE_TYPE, default=grpc" yaml:"type"`
	ServiceName               string `env:"OBSERVE_SERVICE_NAME, default=storefront-client" yaml:"service_name"`
	TraceBatchTimeoutSeconds  int    `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20" yaml:"trace_batch_timeout_seconds"`
	MetricReadIntervalSeconds int    `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60" yaml:"metric_read_interval_seconds"`
	HTTPTransportEnabled      bool   `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true" yaml:"http_transport_enabled"`
}

type SessionConfig struct {
	// Path is the location of the durable session file, used when the user
	// chooses to be remembered across runs. Empty selects a file under the
	// user configuration directory.
	Path string `env:"STOREFRONT_SESSION_PATH" yaml:"path"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, nil) // load from OS environment
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup, // nil defaults to OS environment
	})
	if err != nil {
		return cfg, err
	}

	if cfg.File != "" {
		err = cfg.applyFile(cfg.File)
		if err != nil {
			return cfg, fmt.Errorf("config file %s: %w", cfg.File, err)
		}
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaultBaseURLs[cfg.Environment]
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyFile overlays values from a YAML file onto the configuration. Fields
// the file mentions win over environment-derived values.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// Validate checks that the configuration is usable before any service is
// constructed from it.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("API base URL must be configured")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API base URL %q is not an absolute URL", c.API.BaseURL)
	}

	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	return nil
}
