// Package mcpserver exposes the completion dispatcher as MCP tools.
// Two tools are registered: "complete" forwards a chat completion to
// the downstream proxy, "list_models" reports the model allow-list.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vermittler/pkg/api"
	"github.com/rhuss/vermittler/pkg/debug"
	"github.com/rhuss/vermittler/pkg/observability"
	"github.com/rhuss/vermittler/pkg/registry"
)

const serverVersion = "1.0.0"

// Completer is the completion entry point behind the tool surface.
// *dispatch.Dispatcher satisfies it.
type Completer interface {
	Complete(ctx context.Context, req *api.CompletionRequest) (*api.CompletionResult, error)
}

// Surface maps MCP tool calls onto the completer. Tool failures are
// reported through CallToolResult.IsError, never as protocol errors,
// so clients always receive a result they can show to the model.
type Surface struct {
	completer Completer
	reg       *registry.Registry
}

// NewSurface creates a Surface over the given completer and registry.
func NewSurface(completer Completer, reg *registry.Registry) *Surface {
	return &Surface{completer: completer, reg: reg}
}

// Server builds the MCP server with both tools registered.
func (s *Surface) Server() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "vermittler", Version: serverVersion},
		nil,
	)

	models := s.reg.Models()

	server.AddTool(&mcp.Tool{
		Name:        "complete",
		Description: "Send a completion request to a specified LLM model through LiteLLM proxy.",
		InputSchema: completeSchema(models),
	}, s.handler("complete"))

	server.AddTool(&mcp.Tool{
		Name:        "list_models",
		Description: "List available models from the LiteLLM proxy.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
			"required":   []string{},
		},
	}, s.handler("list_models"))

	return server
}

// Call dispatches a tool operation by name and returns the result text.
// Unknown names fail with an unknown_operation error.
func (s *Surface) Call(ctx context.Context, name string, args json.RawMessage) (string, error) {
	switch name {
	case "complete":
		return s.complete(ctx, args)
	case "list_models":
		return s.listModels(), nil
	default:
		return "", api.NewUnknownOperation(name)
	}
}

// handler adapts Call to the SDK tool handler signature, recording
// metrics and converting errors into IsError results.
func (s *Surface) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		debug.Log("mcp", "tool call", "name", name,
			"arguments", debug.Truncate(string(req.Params.Arguments), 500))

		start := time.Now()
		text, err := s.Call(ctx, name, req.Params.Arguments)
		observability.ToolCallDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

		if err != nil {
			observability.ToolCallsTotal.WithLabelValues(name, "error").Inc()
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		observability.ToolCallsTotal.WithLabelValues(name, "ok").Inc()
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: text}},
		}, nil
	}
}

// completeInput mirrors the "complete" tool schema.
type completeInput struct {
	Model       string        `json:"model"`
	Messages    []api.Message `json:"messages"`
	Temperature *float64      `json:"temperature"`
	MaxTokens   *int          `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

func (s *Surface) complete(ctx context.Context, args json.RawMessage) (string, error) {
	var in completeInput
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return "", api.NewInvalidMessages(fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	res, err := s.completer.Complete(ctx, &api.CompletionRequest{
		Model:       in.Model,
		Messages:    in.Messages,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
		Stream:      in.Stream,
	})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (s *Surface) listModels() string {
	models := s.reg.Models()
	lines := make([]string, len(models))
	for i, m := range models {
		lines[i] = "- " + m
	}
	text := "Available models in this MCP server:\n" + strings.Join(lines, "\n")
	text += "\n\nNote: Only these models are supported for security and performance reasons."
	return text
}

// completeSchema builds the input schema for the "complete" tool with
// the allow-listed models as an enum.
func completeSchema(models []string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"model": map[string]any{
				"type":        "string",
				"description": "The LLM model to use. Supported models: " + strings.Join(models, ", "),
				"enum":        models,
			},
			"messages": map[string]any{
				"type":        "array",
				"description": "An array of conversation messages, each with 'role' and 'content'.",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"role":    map[string]any{"type": "string", "description": "The role in the conversation (e.g., 'user', 'assistant')."},
						"content": map[string]any{"type": "string", "description": "The content of the message."},
					},
					"required": []string{"role", "content"},
				},
			},
			"temperature": map[string]any{
				"type":        "number",
				"description": "Controls randomness in the response (0.0 to 2.0).",
				"minimum":     0.0,
				"maximum":     2.0,
				"default":     0.7,
			},
			"max_tokens": map[string]any{
				"type":        "integer",
				"description": "Maximum number of tokens to generate.",
				"minimum":     1,
				"default":     1000,
			},
			"stream": map[string]any{
				"type":        "boolean",
				"description": "Request a streamed response from the proxy.",
				"default":     false,
			},
		},
		"required": []string{"model", "messages"},
	}
}
