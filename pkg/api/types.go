package api

// Message is a single conversation entry. Order within a request is
// conversation order and is preserved end to end.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the request accepted by the dispatcher. Temperature
// and MaxTokens are pointers so that "absent" can be told apart from zero;
// defaults come from the model's registry entry.
type CompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// CompletionResult is the normalized success value: the first choice's
// message content, unmodified. Constructed per request, never persisted.
type CompletionResult struct {
	Text string `json:"text"`
}
