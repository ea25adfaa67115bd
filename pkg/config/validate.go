package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// proxy.base_url is required and must parse as an absolute URL.
	if c.Proxy.BaseURL == "" {
		errs = append(errs, fmt.Errorf("proxy.base_url is required"))
	} else if u, err := url.Parse(c.Proxy.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("proxy.base_url must be an absolute URL, got %q", c.Proxy.BaseURL))
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be > 0, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.ConnectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http.connect_timeout must be > 0, got %s", c.HTTP.ConnectTimeout))
	}
	if c.HTTP.MaxKeepAlive <= 0 {
		errs = append(errs, fmt.Errorf("http.max_keepalive must be > 0, got %d", c.HTTP.MaxKeepAlive))
	}
	if c.HTTP.MaxConns < c.HTTP.MaxKeepAlive {
		errs = append(errs, fmt.Errorf("http.max_conns must be >= http.max_keepalive, got %d < %d",
			c.HTTP.MaxConns, c.HTTP.MaxKeepAlive))
	}

	if c.Cache.Enabled && c.Cache.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.max_size must be > 0 when cache is enabled, got %d", c.Cache.MaxSize))
	}

	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Port <= 0 {
		errs = append(errs, fmt.Errorf("observability.metrics.port must be > 0, got %d", c.Observability.Metrics.Port))
	}

	// Model entries, when present, need at least an identifier.
	for i, m := range c.Models {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("models[%d].id is required", i))
		}
	}

	return errors.Join(errs...)
}
