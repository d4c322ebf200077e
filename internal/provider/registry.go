package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/johnayoung/llm-council/internal/errs"
)

// DefaultJudge is the model that synthesizes the council's verdict.
const DefaultJudge = "anthropic/claude-3.5-sonnet"

// Entry is one council member: a display label and the model it queries.
type Entry struct {
	Label string `json:"label" yaml:"label"`
	Model string `json:"model" yaml:"model"`
}

// DefaultEntries returns the standard council, in display order.
func DefaultEntries() []Entry {
	return []Entry{
		{Label: "ChatGPT-4o", Model: "openai/gpt-4o"},
		{Label: "Claude 3.5 Sonnet", Model: "anthropic/claude-3.5-sonnet"},
		{Label: "Gemini Pro 1.5", Model: "google/gemini-pro-1.5"},
		{Label: "Perplexity Sonar", Model: "perplexity/sonar-reasoning"},
		{Label: "Grok Beta", Model: "xai/grok-beta"},
	}
}

// Registry is the fixed, ordered fan-out set for a session.
// It is immutable after construction and safe for concurrent reads.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry validates entries and returns a registry preserving their order.
// Labels must be unique and neither labels nor models may be blank.
func NewRegistry(entries ...Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, registryError(errors.New("at least one council member is required"))
	}

	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		e.Label = strings.TrimSpace(e.Label)
		e.Model = strings.TrimSpace(e.Model)

		if e.Label == "" {
			return nil, registryError(fmt.Errorf("member %d: label is empty", i))
		}
		if e.Model == "" {
			return nil, registryError(fmt.Errorf("member %q: model is empty", e.Label))
		}
		if _, dup := r.index[e.Label]; dup {
			return nil, registryError(fmt.Errorf("duplicate label %q", e.Label))
		}

		r.index[e.Label] = len(r.entries)
		r.entries = append(r.entries, e)
	}

	return r, nil
}

// Entries returns a copy of the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Labels returns the member labels in registration order.
func (r *Registry) Labels() []string {
	labels := make([]string, len(r.entries))
	for i, e := range r.entries {
		labels[i] = e.Label
	}
	return labels
}

// Lookup retrieves the entry for a label.
func (r *Registry) Lookup(label string) (Entry, bool) {
	i, ok := r.index[label]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Len returns the number of council members.
func (r *Registry) Len() int {
	return len(r.entries)
}

func registryError(err error) error {
	return &errs.OpError{
		Op:   "provider.registry",
		Kind: errs.KindInvalidConfig,
		Err:  err,
	}
}
