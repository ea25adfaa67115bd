// Package dispatch implements the completion dispatcher: request
// validation, per-model routing between the direct proxy call and the
// generic completion library, and response normalization.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rhuss/vermittler/pkg/api"
	"github.com/rhuss/vermittler/pkg/completion"
	"github.com/rhuss/vermittler/pkg/debug"
	"github.com/rhuss/vermittler/pkg/observability"
	"github.com/rhuss/vermittler/pkg/proxy"
	"github.com/rhuss/vermittler/pkg/registry"
)

// DirectCaller is the direct proxy call path. *proxy.Client satisfies it.
type DirectCaller interface {
	CreateChatCompletion(ctx context.Context, req *proxy.ChatCompletionRequest) (*proxy.ChatCompletionResponse, error)
}

// Dispatcher validates completion requests, routes them to the proper
// call path, and normalizes the result. Stateless apart from its
// collaborators; safe for concurrent use.
type Dispatcher struct {
	reg     *registry.Registry
	direct  DirectCaller
	library completion.Completer
}

// New creates a Dispatcher over the given registry and call paths.
func New(reg *registry.Registry, direct DirectCaller, library completion.Completer) *Dispatcher {
	return &Dispatcher{
		reg:     reg,
		direct:  direct,
		library: library,
	}
}

// Complete validates the request, dispatches it, and returns the first
// choice's message content. Validation is fail-fast: the first violation
// wins and nothing reaches the transport. No failure is retried here;
// retry policy belongs to the caller.
func (d *Dispatcher) Complete(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResult, error) {
	if err := d.validate(req); err != nil {
		slog.Warn("completion request rejected",
			"model", req.Model,
			"messages", len(req.Messages),
			"kind", api.KindOf(err))
		return nil, err
	}

	cfg := d.reg.ConfigFor(req.Model)

	temperature := cfg.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := cfg.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	chatReq := &proxy.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toChatMessages(req.Messages),
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Stream:      req.Stream,
	}

	path := "library"
	if cfg.DirectCall {
		path = "direct"
	}

	requestID := uuid.NewString()
	slog.Info("completion request",
		"request_id", requestID,
		"model", req.Model,
		"messages", len(req.Messages),
		"temperature", temperature,
		"path", path)

	// Per-model timeout from the registry bounds both call paths.
	callCtx, cancel := context.WithTimeout(ctx, cfg.PreferredTimeout)
	defer cancel()

	start := time.Now()
	var resp *proxy.ChatCompletionResponse
	var err error
	if cfg.DirectCall {
		resp, err = d.direct.CreateChatCompletion(callCtx, chatReq)
	} else {
		resp, err = d.library.Complete(callCtx, chatReq)
	}
	elapsed := time.Since(start)

	observability.ProxyLatency.WithLabelValues(path, req.Model).Observe(elapsed.Seconds())

	if err != nil {
		observability.ProxyRequestsTotal.WithLabelValues(path, req.Model, "error").Inc()
		slog.Error("completion failed",
			"request_id", requestID,
			"model", req.Model,
			"messages", len(req.Messages),
			"kind", api.KindOf(err),
			"error", err)
		return nil, err
	}
	observability.ProxyRequestsTotal.WithLabelValues(path, req.Model, "ok").Inc()

	return d.normalize(requestID, req.Model, resp)
}

// validate applies the request checks in order: model first, then the
// messages sequence, then each entry.
func (d *Dispatcher) validate(req *api.CompletionRequest) error {
	if req.Model == "" || !d.reg.IsSupported(req.Model) {
		return api.NewUnsupportedModel(req.Model, d.reg.Models())
	}

	if len(req.Messages) == 0 {
		return api.NewInvalidMessages("messages must be a non-empty array of objects with role and content")
	}

	for i, m := range req.Messages {
		if m.Role == "" || m.Content == "" {
			return api.NewInvalidMessages(
				fmt.Sprintf("message at index %d must have both role and content", i))
		}
	}

	return nil
}

// normalize extracts the first choice's message content, unmodified.
// Usage metadata is logged and counted but never returned.
func (d *Dispatcher) normalize(requestID, model string, resp *proxy.ChatCompletionResponse) (*api.CompletionResult, error) {
	if len(resp.Choices) == 0 {
		return nil, api.NewEmptyResponse(model)
	}

	if resp.Usage != nil {
		slog.Info("completion usage",
			"request_id", requestID,
			"model", model,
			"total_tokens", resp.Usage.TotalTokens)
		observability.ProxyTokensTotal.WithLabelValues(model, "input").Add(float64(resp.Usage.PromptTokens))
		observability.ProxyTokensTotal.WithLabelValues(model, "output").Add(float64(resp.Usage.CompletionTokens))
	}

	text := resp.Choices[0].Message.Content
	debug.Log("dispatch", "completion result", "request_id", requestID, "text", debug.Truncate(text, 200))

	return &api.CompletionResult{Text: text}, nil
}

// toChatMessages converts boundary messages to the proxy wire format,
// preserving conversation order.
func toChatMessages(msgs []api.Message) []proxy.ChatMessage {
	out := make([]proxy.ChatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = proxy.ChatMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
