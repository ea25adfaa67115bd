package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rhuss/vermittler/pkg/api"
)

func TestMapHTTPError(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(strings.NewReader("upstream unavailable\n")),
	}

	err := MapHTTPError(resp)
	if err.Kind != api.ErrorKindProxyError {
		t.Errorf("Kind = %q, want proxy_error", err.Kind)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Body != "upstream unavailable" {
		t.Errorf("Body = %q", err.Body)
	}
}

func TestMapHTTPError_EmptyBodyUsesStatusText(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusServiceUnavailable,
		Body:       io.NopCloser(strings.NewReader("")),
	}

	err := MapHTTPError(resp)
	if err.Body != "Service Unavailable" {
		t.Errorf("Body = %q, want status text fallback", err.Body)
	}
}

func TestMapHTTPError_BoundsBody(t *testing.T) {
	huge := strings.Repeat("x", 10*maxErrorBody)
	resp := &http.Response{
		StatusCode: http.StatusInternalServerError,
		Body:       io.NopCloser(strings.NewReader(huge)),
	}

	err := MapHTTPError(resp)
	if len(err.Body) > maxErrorBody {
		t.Errorf("Body length = %d, want <= %d", len(err.Body), maxErrorBody)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestMapNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want api.ErrorKind
	}{
		{"deadline exceeded", context.DeadlineExceeded, api.ErrorKindProxyTimeout},
		{"wrapped deadline", errors.Join(errors.New("request failed"), context.DeadlineExceeded), api.ErrorKindProxyTimeout},
		{"net timeout", timeoutErr{}, api.ErrorKindProxyTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:4000: connect: connection refused"), api.ErrorKindProxyConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapNetworkError(tt.err).Kind; got != tt.want {
				t.Errorf("Kind = %q, want %q", got, tt.want)
			}
		})
	}
}
