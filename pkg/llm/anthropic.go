package llm

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicClient is a stub implementation that can be expanded once the SDK
// is available.
type AnthropicClient struct{}

// NewAnthropicClient constructs a new stub client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicClient{}, nil
}

// Complete is not yet implemented for Anthropic models.
func (a *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	return Response{}, fmt.Errorf("anthropic client not implemented")
}
