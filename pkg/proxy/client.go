package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rhuss/vermittler/pkg/api"
	"github.com/rhuss/vermittler/pkg/debug"
)

// Config holds transport settings for the proxy client.
type Config struct {
	// BaseURL is the LiteLLM proxy URL (e.g., "http://localhost:4000").
	BaseURL string

	// APIKey for proxy authentication, sent as a bearer token (optional).
	APIKey string

	// Timeout for a whole request. Defaults to 120s.
	Timeout time.Duration

	// ConnectTimeout bounds connection establishment. Defaults to 30s.
	ConnectTimeout time.Duration

	// MaxKeepAlive caps idle keep-alive connections. Defaults to 20.
	MaxKeepAlive int

	// MaxConns caps total connections per host. Defaults to 100.
	MaxConns int

	// EnableHTTP2 attempts HTTP/2 negotiation. Best effort: when the
	// proxy does not speak it, the client falls back to HTTP/1.1
	// transparently. Never a hard failure.
	EnableHTTP2 bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		Timeout:        120 * time.Second,
		ConnectTimeout: 30 * time.Second,
		MaxKeepAlive:   20,
		MaxConns:       100,
		EnableHTTP2:    true,
	}
}

// Client performs HTTP requests against the LiteLLM proxy. One Client is
// created at process start and shared by every request path; Close
// releases its connection pool exactly once.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	closeOnce sync.Once
}

// NewClient creates the shared proxy client with a bounded connection
// pool built from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("proxy: BaseURL is required")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	if cfg.MaxKeepAlive == 0 {
		cfg.MaxKeepAlive = 20
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 100
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxKeepAlive,
		MaxIdleConnsPerHost: cfg.MaxKeepAlive,
		MaxConnsPerHost:     cfg.MaxConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   cfg.EnableHTTP2,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}, nil
}

// CreateChatCompletion is the direct-call path: it posts the request
// as-is to the proxy's Chat Completions endpoint, bypassing the generic
// completion library.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, api.NewProxyConnection(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := c.baseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewProxyConnection(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	debug.Log("proxy", "direct chat completion", "url", url, "model", req.Model)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewProxyConnection(fmt.Sprintf("failed to parse proxy response: %s", err.Error()))
	}

	return &chatResp, nil
}

// ListModels queries the proxy's /v1/models endpoint.
func (c *Client) ListModels(ctx context.Context) ([]ChatModel, error) {
	url := c.baseURL + "/v1/models"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, api.NewProxyConnection(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var modelsResp ChatModelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, api.NewProxyConnection(fmt.Sprintf("failed to parse models response: %s", err.Error()))
	}

	return modelsResp.Data, nil
}

// Close releases the connection pool. Safe to call from any exit path;
// only the first call has an effect.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
	})
	return nil
}
