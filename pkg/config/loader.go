package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, VERMITTLER_CONFIG env, ./config.yaml,
//     /etc/vermittler/config.yaml)
//  3. Environment variable overrides (VERMITTLER_* and legacy names)
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. VERMITTLER_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/vermittler/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("VERMITTLER_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/vermittler/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps environment variables to config fields. The
// legacy names come from the original deployment and stay supported so
// existing .env files keep working; VERMITTLER_* names take precedence.
func applyEnvOverrides(cfg *Config) {
	// Legacy env var mappings.
	if v := os.Getenv("LITELLM_PROXY_URL"); v != "" {
		cfg.Proxy.BaseURL = v
	}
	if v := os.Getenv("LITELLM_API_KEY"); v != "" {
		cfg.Proxy.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Proxy.DirectAPIKey = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := parseSeconds(v); err == nil {
			cfg.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("HTTP_CONNECT_TIMEOUT"); v != "" {
		if d, err := parseSeconds(v); err == nil {
			cfg.HTTP.ConnectTimeout = d
		}
	}
	if v := os.Getenv("HTTP_MAX_KEEPALIVE_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.MaxKeepAlive = n
		}
	}
	if v := os.Getenv("HTTP_MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.MaxConns = n
		}
	}
	if v := os.Getenv("HTTP_ENABLE_HTTP2"); v != "" {
		cfg.HTTP.EnableHTTP2 = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ENABLE_RESPONSE_CACHING"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if d, err := parseSeconds(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("CACHE_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.MaxSize = n
		}
	}

	// VERMITTLER_* names override the legacy ones.
	if v := os.Getenv("VERMITTLER_PROXY_URL"); v != "" {
		cfg.Proxy.BaseURL = v
	}
	if v := os.Getenv("VERMITTLER_API_KEY"); v != "" {
		cfg.Proxy.APIKey = v
	}
	if v := os.Getenv("VERMITTLER_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Observability.Metrics.Port = port
		}
	}
	if v := os.Getenv("VERMITTLER_METRICS_ENABLED"); v != "" {
		cfg.Observability.Metrics.Enabled = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("VERMITTLER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VERMITTLER_DEBUG"); v != "" {
		cfg.Log.Debug = v
	}
}

// parseSeconds parses a duration given as a plain number of seconds
// ("30", "45.5"), the unit convention of the legacy env vars.
func parseSeconds(s string) (time.Duration, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing seconds value %q: %w", s, err)
	}
	return time.Duration(f * float64(time.Second)), nil
}

// resolveFileReferences reads _file fields and populates the corresponding
// value fields. The value field wins if both are set.
func resolveFileReferences(cfg *Config) error {
	// proxy.api_key_file -> proxy.api_key
	if cfg.Proxy.APIKeyFile != "" && cfg.Proxy.APIKey == "" {
		val, err := readSecretFile(cfg.Proxy.APIKeyFile)
		if err != nil {
			return fmt.Errorf("proxy.api_key_file: %w", err)
		}
		cfg.Proxy.APIKey = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding
// whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
