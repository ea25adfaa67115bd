package integration

import (
	"strings"
	"testing"
)

func TestCompleteEndToEnd(t *testing.T) {
	result := callTool(t, "complete", map[string]any{
		"model":       "gpt-4o",
		"messages":    []map[string]string{{"role": "user", "content": "What is 2+2?"}},
		"temperature": 0.1,
		"max_tokens":  50,
	})

	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}
	if got := toolText(t, result); got != "4" {
		t.Errorf("text = %q, want %q", got, "4")
	}

	// The wire request carries the caller's parameters.
	body := testEnv.LastRequest()
	if body["model"] != "gpt-4o" {
		t.Errorf("wire model = %v", body["model"])
	}
	if temp, _ := body["temperature"].(float64); temp != 0.1 {
		t.Errorf("wire temperature = %v, want 0.1", body["temperature"])
	}
	if maxTok, _ := body["max_tokens"].(float64); maxTok != 50 {
		t.Errorf("wire max_tokens = %v, want 50", body["max_tokens"])
	}
	if got := testEnv.LastAuth(); got != "Bearer test-key" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestCompleteAppliesDefaults(t *testing.T) {
	result := callTool(t, "complete", map[string]any{
		"model":    "gpt-4o",
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
	})

	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}

	body := testEnv.LastRequest()
	if temp, _ := body["temperature"].(float64); temp != 0.7 {
		t.Errorf("wire temperature = %v, want default 0.7", body["temperature"])
	}
	if maxTok, _ := body["max_tokens"].(float64); maxTok != 1000 {
		t.Errorf("wire max_tokens = %v, want default 1000", body["max_tokens"])
	}
}

func TestCompleteDirectCallModel(t *testing.T) {
	result := callTool(t, "complete", map[string]any{
		"model":    "anthropic.claude-3-7-sonnet-20250219-v1:0",
		"messages": []map[string]string{{"role": "user", "content": "What is 2+2?"}},
	})

	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}
	if got := toolText(t, result); got != "4" {
		t.Errorf("text = %q, want %q", got, "4")
	}
	// Both routes land on the same proxy endpoint.
	if body := testEnv.LastRequest(); body["model"] != "anthropic.claude-3-7-sonnet-20250219-v1:0" {
		t.Errorf("wire model = %v", body["model"])
	}
}

func TestListModelsEndToEnd(t *testing.T) {
	result := callTool(t, "list_models", map[string]any{})

	if result.IsError {
		t.Fatalf("unexpected error result: %s", toolText(t, result))
	}

	text := toolText(t, result)
	if !strings.HasPrefix(text, "Available models in this MCP server:") {
		t.Errorf("unexpected header:\n%s", text)
	}
	for _, model := range []string{"gpt-4o", "anthropic.claude-3-7-sonnet-20250219-v1:0"} {
		if !strings.Contains(text, "- "+model) {
			t.Errorf("model %q missing from listing:\n%s", model, text)
		}
	}
}
