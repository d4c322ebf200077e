package provider

import (
	"context"
	"time"
)

// Provider abstracts LLM API interactions.
type Provider interface {
	// Query sends a chat completion request and returns the complete response.
	Query(ctx context.Context, req Request) (Response, error)
}

// Request contains all inputs for one chat completion.
// System is optional; when empty only the user message is sent.
type Request struct {
	Model  string
	System string
	Prompt string
}

// Response contains the result of an LLM query.
type Response struct {
	Model    string        `json:"model"`
	Content  string        `json:"content"`
	Provider string        `json:"provider"`
	Latency  time.Duration `json:"-"`
}

// ProviderFunc allows functions to implement Provider (adapter pattern).
// Useful for testing and simple inline implementations.
type ProviderFunc func(ctx context.Context, req Request) (Response, error)

func (f ProviderFunc) Query(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
