package ai

import "context"

// Message is one turn of conversation history.
type Message struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// Request is a completion request against the model provider.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float32
	JSONOutput  bool
}

// Usage reports provider token accounting.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Result of a completion call.
type Result struct {
	Text  string
	Model string
	Usage Usage
}

// StreamFunc receives incremental text deltas in generation order.
// Returning an error aborts the stream.
type StreamFunc func(delta string) error

// Client is the completion provider port. One long-lived instance is
// constructed at process start and passed to the services that need it.
type Client interface {
	Complete(ctx context.Context, req Request) (Result, error)
	// Stream delivers deltas through fn and returns the assembled result
	// once the underlying stream signals completion.
	Stream(ctx context.Context, req Request, fn StreamFunc) (Result, error)
}
