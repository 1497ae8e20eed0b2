package llm

import "context"

// Request is one completion request. The core treats the response text as
// opaque bytes and does all JSON parsing itself.
type Request struct {
	System      string
	User        string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Response carries the raw model output.
type Response struct {
	Text string
}

// Client describes a language model capable of drafting problems. A client
// must not retry internally; retry policy belongs to the pipeline.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
