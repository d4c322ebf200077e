package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/johnayoung/llm-council/internal/provider"
)

func TestCaller_Call(t *testing.T) {
	entry := provider.Entry{Label: "ChatGPT-4o", Model: "openai/gpt-4o"}

	tests := []struct {
		name        string
		err         error
		content     string
		wantStatus  Status
		wantContent string
	}{
		{
			name:        "success",
			content:     "pong",
			wantStatus:  StatusSuccess,
			wantContent: "pong",
		},
		{
			name:        "insufficient credits",
			err:         &provider.APIError{StatusCode: http.StatusPaymentRequired, Message: "Insufficient credits"},
			wantStatus:  StatusFailure,
			wantContent: "insufficient credits",
		},
		{
			name:        "wrapped insufficient credits",
			err:         fmt.Errorf("sending: %w", &provider.APIError{StatusCode: http.StatusOK, Code: "402"}),
			wantStatus:  StatusFailure,
			wantContent: "insufficient credits",
		},
		{
			name:        "generic error",
			err:         errors.New("dial tcp: connection refused"),
			wantStatus:  StatusFailure,
			wantContent: "Error: dial tcp: connection refused",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("sending request: %w", context.DeadlineExceeded),
			wantStatus:  StatusFailure,
			wantContent: "timed out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := provider.ProviderFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
				return provider.Response{Content: tt.content}, tt.err
			})

			out := NewCaller(p, "").Call(context.Background(), entry, Query{Text: "ping"})

			if out.Label != entry.Label || out.Model != entry.Model {
				t.Errorf("outcome not tagged with entry: %+v", out)
			}
			if out.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", out.Status, tt.wantStatus)
			}
			if !strings.Contains(out.Content, tt.wantContent) {
				t.Errorf("content = %q, want it to contain %q", out.Content, tt.wantContent)
			}
		})
	}
}

func TestCaller_CreditMessageIsDistinct(t *testing.T) {
	credits := Diagnose(&provider.APIError{StatusCode: http.StatusPaymentRequired})
	generic := Diagnose(&provider.APIError{StatusCode: http.StatusInternalServerError, Message: "oops"})

	if credits == generic {
		t.Fatal("credit diagnostic must differ from generic errors")
	}
	if strings.Contains(generic, "insufficient credits") {
		t.Errorf("generic diagnostic %q must not mention credits", generic)
	}
}

func TestCaller_SendsSystemPromptAndQuery(t *testing.T) {
	var got provider.Request
	p := provider.ProviderFunc(func(ctx context.Context, req provider.Request) (provider.Response, error) {
		got = req
		return provider.Response{Content: "ok"}, nil
	})

	NewCaller(p, "").Call(context.Background(), provider.Entry{Label: "A", Model: "model-a"}, Query{Text: "what is go?"})

	if got.System != DefaultSystemPrompt {
		t.Errorf("system = %q, want %q", got.System, DefaultSystemPrompt)
	}
	if got.Prompt != "what is go?" || got.Model != "model-a" {
		t.Errorf("request = %+v", got)
	}

	NewCaller(p, "Answer in French.").Call(context.Background(), provider.Entry{Label: "A", Model: "model-a"}, Query{Text: "q"})
	if got.System != "Answer in French." {
		t.Errorf("custom system = %q", got.System)
	}
}
