// Package config provides unified configuration for the vermittler server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (VERMITTLER_ prefix)
//  4. Backward-compatible env var mapping for the legacy deployment names
//     (LITELLM_PROXY_URL, HTTP_TIMEOUT, ...)
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import "time"

// Config holds all configuration for the vermittler server.
type Config struct {
	Proxy         ProxyConfig         `yaml:"proxy"`
	HTTP          HTTPConfig          `yaml:"http"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
	Log           LogConfig           `yaml:"log"`
	Models        []ModelEntry        `yaml:"models"`
}

// ProxyConfig holds settings for the downstream LiteLLM proxy.
type ProxyConfig struct {
	BaseURL    string `yaml:"base_url"`     // default: "http://localhost:4000"
	APIKey     string `yaml:"api_key"`      // proxy bearer token (optional)
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key
	// DirectAPIKey is the fallback key used when no proxy key is set
	// (the legacy OPENAI_API_KEY). Optional; absence is not fatal at
	// startup but surfaces as an authorization failure downstream.
	DirectAPIKey string `yaml:"direct_api_key"`
}

// HTTPConfig holds tunables for the shared pooled HTTP client.
type HTTPConfig struct {
	Timeout        time.Duration `yaml:"timeout"`         // default: 120s
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // default: 30s
	MaxKeepAlive   int           `yaml:"max_keepalive"`   // default: 20
	MaxConns       int           `yaml:"max_conns"`       // default: 100
	EnableHTTP2    bool          `yaml:"enable_http2"`    // default: true
}

// CacheConfig holds response-cache settings. The cache is a future
// extension point: the settings are parsed and validated but no code
// path consults them yet.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`  // default: false
	TTL     time.Duration `yaml:"ttl"`      // default: 5m
	MaxSize int           `yaml:"max_size"` // default: 1000
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds the Prometheus metrics listener settings. The
// metrics endpoint runs on its own port because the MCP protocol owns
// stdio.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Port    int    `yaml:"port"`    // default: 9464
	Path    string `yaml:"path"`    // default: "/metrics"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma-separated debug categories
}

// ModelEntry describes one allow-listed model in the config file. When
// the models section is present it replaces the built-in allow-list.
type ModelEntry struct {
	ID                 string        `yaml:"id"`
	DefaultMaxTokens   int           `yaml:"default_max_tokens"`  // default: 1000
	DefaultTemperature float64       `yaml:"default_temperature"` // default: 0.7
	PreferredTimeout   time.Duration `yaml:"preferred_timeout"`   // default: 60s
	DirectCall         bool          `yaml:"direct_call"`
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Proxy: ProxyConfig{
			BaseURL: "http://localhost:4000",
		},
		HTTP: HTTPConfig{
			Timeout:        120 * time.Second,
			ConnectTimeout: 30 * time.Second,
			MaxKeepAlive:   20,
			MaxConns:       100,
			EnableHTTP2:    true,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     5 * time.Minute,
			MaxSize: 1000,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Port:    9464,
				Path:    "/metrics",
			},
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}
