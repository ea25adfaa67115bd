// Package integration provides integration tests for the vermittler
// MCP server.
//
// Tests run the full stack in-process: a mock LiteLLM proxy via
// net/http/httptest, the real pooled proxy client, the dispatcher, and
// the MCP tool surface connected over in-memory transports.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vermittler/pkg/completion"
	"github.com/rhuss/vermittler/pkg/dispatch"
	"github.com/rhuss/vermittler/pkg/mcpserver"
	"github.com/rhuss/vermittler/pkg/proxy"
	"github.com/rhuss/vermittler/pkg/registry"
)

// testEnv holds the shared environment for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment wires a mock proxy, the real client stack, and an
// MCP client session talking to the tool surface.
type TestEnvironment struct {
	MockProxy *httptest.Server
	Client    *proxy.Client
	Session   *mcp.ClientSession

	// mu guards the per-test request observations below.
	mu           sync.Mutex
	lastRequest  map[string]any
	failNext     int
	lastAuth     string
	requestCount int
}

func TestMain(m *testing.M) {
	env, err := setupTestEnvironment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up integration environment: %v\n", err)
		os.Exit(1)
	}
	testEnv = env
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

func setupTestEnvironment() (*TestEnvironment, error) {
	env := &TestEnvironment{}

	env.MockProxy = httptest.NewServer(http.HandlerFunc(env.handleProxy))

	client, err := proxy.NewClient(proxy.Config{
		BaseURL:      env.MockProxy.URL,
		APIKey:       "test-key",
		MaxKeepAlive: 20,
		MaxConns:     100,
	})
	if err != nil {
		return nil, fmt.Errorf("creating proxy client: %w", err)
	}
	env.Client = client

	reg := registry.Default()
	dispatcher := dispatch.New(reg, client, completion.New(client, completion.Config{}))
	surface := mcpserver.NewSurface(dispatcher, reg)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	go func() {
		_ = surface.Server().Run(context.Background(), serverTransport)
	}()

	mcpClient := mcp.NewClient(
		&mcp.Implementation{Name: "integration-test", Version: "1.0.0"},
		nil,
	)
	session, err := mcpClient.Connect(context.Background(), clientTransport, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting MCP client: %w", err)
	}
	env.Session = session

	return env, nil
}

// handleProxy is the mock LiteLLM proxy. It records the decoded request
// body and answers a handful of known prompts deterministically.
func (env *TestEnvironment) handleProxy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":{"message":"invalid request"}}`, http.StatusBadRequest)
		return
	}

	env.mu.Lock()
	env.lastRequest = body
	env.lastAuth = r.Header.Get("Authorization")
	env.requestCount++
	fail := env.failNext > 0
	if fail {
		env.failNext--
	}
	env.mu.Unlock()

	if fail {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
		return
	}

	model, _ := body["model"].(string)
	text := "Hello! How can I help you today?"
	if prompt := lastUserContent(body); strings.Contains(prompt, "2+2") {
		text = "4"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-int-1",
		"object": "chat.completion",
		"model":  model,
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": text},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12},
	})
}

func lastUserContent(body map[string]any) string {
	msgs, _ := body["messages"].([]any)
	for i := len(msgs) - 1; i >= 0; i-- {
		m, ok := msgs[i].(map[string]any)
		if !ok || m["role"] != "user" {
			continue
		}
		content, _ := m["content"].(string)
		return content
	}
	return ""
}

// LastRequest returns the most recent decoded proxy request body.
func (env *TestEnvironment) LastRequest() map[string]any {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.lastRequest
}

// LastAuth returns the Authorization header of the most recent request.
func (env *TestEnvironment) LastAuth() string {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.lastAuth
}

// RequestCount returns the number of proxy requests seen so far.
func (env *TestEnvironment) RequestCount() int {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.requestCount
}

// FailNext makes the proxy answer the next n requests with HTTP 500.
func (env *TestEnvironment) FailNext(n int) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.failNext = n
}

// Teardown stops the mock proxy and closes the client stack.
func (env *TestEnvironment) Teardown() {
	if env.Session != nil {
		_ = env.Session.Close()
	}
	if env.Client != nil {
		_ = env.Client.Close()
	}
	if env.MockProxy != nil {
		env.MockProxy.Close()
	}
}

// callTool invokes an MCP tool and returns the result.
func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := testEnv.Session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool %q: %v", name, err)
	}
	return result
}

// toolText extracts the single text content of a tool result.
func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) != 1 {
		t.Fatalf("expected 1 content item, got %d", len(result.Content))
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want *mcp.TextContent", result.Content[0])
	}
	return tc.Text
}
