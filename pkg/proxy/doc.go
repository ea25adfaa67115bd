// Package proxy implements the HTTP transport to the downstream LiteLLM
// proxy: a single shared, pooled client per process and the direct-call
// path to the Chat Completions endpoint.
//
// The Client is safe for concurrent use; the pool manages connection
// checkout internally and no external locking is required. Close releases
// the pool exactly once, no matter how often it is called.
package proxy
