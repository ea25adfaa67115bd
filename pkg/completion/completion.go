// Package completion provides the generic completion-library path: a
// LiteLLM-style client wrapper with model name mapping, delegating HTTP
// communication to the shared proxy client.
//
// The dispatcher keeps this path and the direct proxy call side by side
// on purpose. The library's default routing was observed to misroute the
// Claude model family, so that family bypasses it; everything else goes
// through here.
package completion

import (
	"context"

	"github.com/rhuss/vermittler/pkg/proxy"
)

// Completer is the generic completion call. Implementations must be safe
// for concurrent use by multiple goroutines.
type Completer interface {
	Complete(ctx context.Context, req *proxy.ChatCompletionRequest) (*proxy.ChatCompletionResponse, error)
}

// Config holds configuration for the completion library.
type Config struct {
	// ModelMapping maps requested model names to proxy model identifiers.
	// For example: {"gpt-4": "openai/gpt-4"}. If a model is not in the
	// map, it is passed through unchanged.
	ModelMapping map[string]string
}

// Library implements Completer against the shared proxy client.
type Library struct {
	client *proxy.Client

	// modelMapper transforms the model name before sending it to the
	// proxy. Nil means the name is used as-is.
	modelMapper func(string) string
}

// Ensure Library implements Completer at compile time.
var _ Completer = (*Library)(nil)

// New creates a Library over the shared proxy client.
func New(client *proxy.Client, cfg Config) *Library {
	lib := &Library{client: client}

	if len(cfg.ModelMapping) > 0 {
		mapping := cfg.ModelMapping
		lib.modelMapper = func(model string) string {
			if mapped, ok := mapping[model]; ok {
				return mapped
			}
			return model
		}
	}

	return lib
}

// Complete performs inference through the library path. The request is
// copied before mutation so callers keep their view. The stream flag is
// forwarded untouched; this adapter never parses token streams.
func (l *Library) Complete(ctx context.Context, req *proxy.ChatCompletionRequest) (*proxy.ChatCompletionResponse, error) {
	reqCopy := *req

	if l.modelMapper != nil {
		reqCopy.Model = l.modelMapper(reqCopy.Model)
	}

	return l.client.CreateChatCompletion(ctx, &reqCopy)
}
