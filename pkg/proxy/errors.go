package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/rhuss/vermittler/pkg/api"
)

// maxErrorBody bounds how much of an error response body is carried in
// the resulting error.
const maxErrorBody = 4096

// MapHTTPError converts a non-2xx proxy response into a proxy_error
// carrying the status code and (bounded) response body.
func MapHTTPError(resp *http.Response) *api.Error {
	body := readBody(resp.Body)
	if body == "" {
		body = http.StatusText(resp.StatusCode)
	}
	return api.NewProxyError(resp.StatusCode, body)
}

// MapNetworkError converts a transport-level error into proxy_timeout or
// proxy_connection_error, so callers can tell retry-worthy conditions
// from permanent ones. The core itself never retries.
func MapNetworkError(err error) *api.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return api.NewProxyTimeout(fmt.Sprintf("proxy request timed out: %s", err.Error()))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return api.NewProxyTimeout(fmt.Sprintf("proxy request timed out: %s", err.Error()))
	}

	return api.NewProxyConnection(fmt.Sprintf("proxy connection error: %s", err.Error()))
}

// readBody reads up to maxErrorBody bytes and trims trailing whitespace.
func readBody(body io.Reader) string {
	if body == nil {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\n")
}
