// Package api defines the request/response contract of the vermittler
// completion core and its error taxonomy.
//
// Every failure that crosses a package boundary is an *api.Error carrying
// an ErrorKind, so callers can distinguish retry-worthy conditions
// (proxy_timeout, proxy_connection_error) from permanent ones
// (unsupported_model, invalid_messages) without string matching.
package api
