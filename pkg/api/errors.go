package api

import (
	"fmt"
	"strings"
)

// ErrorKind represents the category of a completion error.
type ErrorKind string

const (
	ErrorKindUnsupportedModel ErrorKind = "unsupported_model"
	ErrorKindInvalidMessages  ErrorKind = "invalid_messages"
	ErrorKindEmptyResponse    ErrorKind = "empty_response"
	ErrorKindProxyError       ErrorKind = "proxy_error"
	ErrorKindProxyTimeout     ErrorKind = "proxy_timeout"
	ErrorKindProxyConnection  ErrorKind = "proxy_connection_error"
	ErrorKindUnknownOperation ErrorKind = "unknown_operation"
)

// Error is a structured completion error with kind, optional HTTP status
// and body (proxy_error only), optional offending parameter, and message.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Status  int       `json:"status,omitempty"`
	Body    string    `json:"body,omitempty"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Kind, e.Message, e.Status)
	}
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Kind, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf returns the ErrorKind of err if it is an *Error, or "" otherwise.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// NewUnsupportedModel creates an Error for a model not on the allow-list.
func NewUnsupportedModel(model string, supported []string) *Error {
	return &Error{
		Kind:    ErrorKindUnsupportedModel,
		Param:   "model",
		Message: fmt.Sprintf("model %q is not supported; supported models: %s", model, strings.Join(supported, ", ")),
	}
}

// NewInvalidMessages creates an Error for a missing or malformed
// conversation entry.
func NewInvalidMessages(message string) *Error {
	return &Error{
		Kind:    ErrorKindInvalidMessages,
		Param:   "messages",
		Message: message,
	}
}

// NewEmptyResponse creates an Error for a backend response with no choices.
func NewEmptyResponse(model string) *Error {
	return &Error{
		Kind:    ErrorKindEmptyResponse,
		Message: fmt.Sprintf("no choices returned from model %q", model),
	}
}

// NewProxyError creates an Error for a non-2xx proxy response, carrying
// the status code and response body.
func NewProxyError(status int, body string) *Error {
	return &Error{
		Kind:    ErrorKindProxyError,
		Status:  status,
		Body:    body,
		Message: fmt.Sprintf("proxy returned HTTP %d: %s", status, body),
	}
}

// NewProxyTimeout creates an Error for a request that exceeded the
// configured transport timeout.
func NewProxyTimeout(message string) *Error {
	return &Error{
		Kind:    ErrorKindProxyTimeout,
		Message: message,
	}
}

// NewProxyConnection creates an Error for a transport-level connection
// failure (refused, DNS, reset).
func NewProxyConnection(message string) *Error {
	return &Error{
		Kind:    ErrorKindProxyConnection,
		Message: message,
	}
}

// NewUnknownOperation creates an Error for an unrecognized tool name at
// the boundary.
func NewUnknownOperation(name string) *Error {
	return &Error{
		Kind:    ErrorKindUnknownOperation,
		Message: fmt.Sprintf("unknown tool: %s", name),
	}
}
