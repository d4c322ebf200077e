package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/johnayoung/llm-council/internal/provider"
)

// DefaultSystemPrompt is sent ahead of every member query.
const DefaultSystemPrompt = "You are a helpful assistant. Be concise."

// InsufficientCreditsMessage is the diagnostic for an exhausted account.
const InsufficientCreditsMessage = "Error: insufficient credits. Top up the account or remove paid models from the council."

// Caller issues one chat completion for one council member.
type Caller struct {
	provider provider.Provider
	system   string
}

// NewCaller wraps p. An empty system prompt means DefaultSystemPrompt.
func NewCaller(p provider.Provider, system string) *Caller {
	if strings.TrimSpace(system) == "" {
		system = DefaultSystemPrompt
	}
	return &Caller{provider: p, system: system}
}

// Call queries entry's model once. It never returns an error: every failure
// is reported as a StatusFailure outcome with a diagnostic.
func (c *Caller) Call(ctx context.Context, entry provider.Entry, query Query) Outcome {
	start := time.Now()

	out := Outcome{
		Label: entry.Label,
		Model: entry.Model,
	}

	resp, err := c.provider.Query(ctx, provider.Request{
		Model:  entry.Model,
		System: c.system,
		Prompt: query.Text,
	})
	out.Latency = time.Since(start)

	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		out.Status = StatusFailure
		out.Content = Diagnose(err)
		return out
	}

	out.Status = StatusSuccess
	out.Content = resp.Content
	if resp.Latency > 0 {
		out.Latency = resp.Latency
	}
	return out
}

// Diagnose turns a provider error into the message shown to the user.
func Diagnose(err error) string {
	switch {
	case provider.IsInsufficientCredits(err):
		return InsufficientCreditsMessage
	case errors.Is(err, context.DeadlineExceeded):
		return "Error: timed out waiting for a response"
	case errors.Is(err, context.Canceled):
		return "Error: request canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
