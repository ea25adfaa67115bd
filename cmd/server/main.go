// Command server runs the vermittler MCP server: a thin tool-call
// adapter in front of a LiteLLM proxy. The MCP protocol is served over
// stdio; metrics and health run on a separate HTTP listener.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (-config flag, VERMITTLER_CONFIG, ./config.yaml or
// /etc/vermittler/config.yaml), then environment overrides
// (LITELLM_PROXY_URL, LITELLM_API_KEY, HTTP_TIMEOUT, ... and the
// VERMITTLER_* equivalents).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/vermittler/pkg/completion"
	"github.com/rhuss/vermittler/pkg/config"
	"github.com/rhuss/vermittler/pkg/debug"
	"github.com/rhuss/vermittler/pkg/dispatch"
	"github.com/rhuss/vermittler/pkg/mcpserver"
	"github.com/rhuss/vermittler/pkg/proxy"
	"github.com/rhuss/vermittler/pkg/registry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	// Logging goes to stderr; stdout carries the MCP protocol.
	debug.Init(cfg.Log.Debug, cfg.Log.Level)

	reg := registry.Default()
	if len(cfg.Models) > 0 {
		reg = registry.New(modelConfigs(cfg.Models))
	}

	apiKey := cfg.Proxy.APIKey
	if apiKey == "" {
		apiKey = cfg.Proxy.DirectAPIKey
	}

	client, err := proxy.NewClient(proxy.Config{
		BaseURL:        cfg.Proxy.BaseURL,
		APIKey:         apiKey,
		Timeout:        cfg.HTTP.Timeout,
		ConnectTimeout: cfg.HTTP.ConnectTimeout,
		MaxKeepAlive:   cfg.HTTP.MaxKeepAlive,
		MaxConns:       cfg.HTTP.MaxConns,
		EnableHTTP2:    cfg.HTTP.EnableHTTP2,
	})
	if err != nil {
		return fmt.Errorf("creating proxy client: %w", err)
	}
	defer client.Close()

	dispatcher := dispatch.New(reg, client, completion.New(client, completion.Config{}))
	surface := mcpserver.NewSurface(dispatcher, reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ops *http.Server
	if cfg.Observability.Metrics.Enabled {
		ops = opsServer(cfg)
		go func() {
			slog.Info("ops listener starting",
				"port", cfg.Observability.Metrics.Port,
				"path", cfg.Observability.Metrics.Path)
			if err := ops.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("ops listener failed", "error", err)
			}
		}()
	}

	slog.Info("vermittler starting",
		"proxy", cfg.Proxy.BaseURL,
		"models", reg.Models())

	runErr := surface.Server().Run(ctx, &mcp.StdioTransport{})

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ops.Shutdown(shutdownCtx)
	}

	// A run error caused by signal-driven context cancellation is a
	// normal shutdown, not a failure.
	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	slog.Info("shutting down")
	return nil
}

// opsServer builds the metrics and health listener.
func opsServer(cfg *config.Config) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Observability.Metrics.Port),
		Handler: r,
	}
}

func modelConfigs(entries []config.ModelEntry) []registry.ModelConfig {
	out := make([]registry.ModelConfig, len(entries))
	for i, e := range entries {
		out[i] = registry.ModelConfig{
			ID:                 e.ID,
			DefaultMaxTokens:   e.DefaultMaxTokens,
			DefaultTemperature: e.DefaultTemperature,
			PreferredTimeout:   e.PreferredTimeout,
			DirectCall:         e.DirectCall,
		}
	}
	return out
}
