// Package registry holds the static model allow-list and the per-model
// defaults used by the completion dispatcher.
//
// The allow-list is a deliberate security and cost control: unknown models
// are rejected at the boundary instead of being forwarded to the proxy.
// There is no dynamic discovery and no remote capability negotiation.
package registry

import "time"

// ModelConfig holds per-model defaults. Immutable after registry
// construction; never mutated at runtime.
type ModelConfig struct {
	ID                 string
	DefaultMaxTokens   int
	DefaultTemperature float64
	PreferredTimeout   time.Duration

	// DirectCall routes the model through the direct proxy HTTP path
	// instead of the generic completion library. The generic library's
	// default routing was observed to misroute the Claude model family,
	// so that family posts to the proxy directly.
	DirectCall bool
}

// Registry is a fixed allow-list of model identifiers with their
// defaults. Safe for concurrent use: read-only after construction.
type Registry struct {
	models   map[string]ModelConfig
	order    []string
	fallback ModelConfig
}

// Default returns the built-in registry: the two models the deployment
// allows, with the timeouts observed to work against the proxy.
func Default() *Registry {
	return New([]ModelConfig{
		{
			ID:                 "gpt-4o",
			DefaultMaxTokens:   1000,
			DefaultTemperature: 0.7,
			PreferredTimeout:   45 * time.Second,
		},
		{
			ID:                 "anthropic.claude-3-7-sonnet-20250219-v1:0",
			DefaultMaxTokens:   1000,
			DefaultTemperature: 0.7,
			PreferredTimeout:   60 * time.Second,
			DirectCall:         true,
		},
	})
}

// New builds a registry from the given model configs, preserving order.
// Zero-valued defaults are filled in (1000 tokens, temperature 0.7,
// 60s preferred timeout).
func New(configs []ModelConfig) *Registry {
	r := &Registry{
		models: make(map[string]ModelConfig, len(configs)),
		fallback: ModelConfig{
			DefaultMaxTokens:   1000,
			DefaultTemperature: 0.7,
			PreferredTimeout:   60 * time.Second,
		},
	}
	for _, mc := range configs {
		if mc.DefaultMaxTokens == 0 {
			mc.DefaultMaxTokens = 1000
		}
		if mc.DefaultTemperature == 0 {
			mc.DefaultTemperature = 0.7
		}
		if mc.PreferredTimeout == 0 {
			mc.PreferredTimeout = 60 * time.Second
		}
		if _, exists := r.models[mc.ID]; !exists {
			r.order = append(r.order, mc.ID)
		}
		r.models[mc.ID] = mc
	}
	return r
}

// IsSupported reports whether the model is on the allow-list.
func (r *Registry) IsSupported(model string) bool {
	_, ok := r.models[model]
	return ok
}

// ConfigFor returns the config for a model. Unknown models get the
// fallback defaults with the requested identifier filled in; this never
// fails so that lookups stay branch-free for callers.
func (r *Registry) ConfigFor(model string) ModelConfig {
	if mc, ok := r.models[model]; ok {
		return mc
	}
	mc := r.fallback
	mc.ID = model
	return mc
}

// Models returns the allow-listed identifiers in registration order.
func (r *Registry) Models() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
