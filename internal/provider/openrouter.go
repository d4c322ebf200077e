package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johnayoung/llm-council/internal/errs"
	"github.com/johnayoung/llm-council/internal/httpclient"
)

// DefaultOpenRouterURL is OpenRouter's OpenAI-compatible API root.
// Model catalogue: https://openrouter.ai/models
const DefaultOpenRouterURL = "https://openrouter.ai/api/v1"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// OpenRouter implements Provider for OpenRouter, which routes one API key to
// many upstream vendors (openai/*, anthropic/*, google/*, xai/*, ...).
// Any OpenAI-compatible chat completions endpoint works via WithBaseURL.
type OpenRouter struct {
	apiKey     string
	baseURL    string
	referer    string
	title      string
	httpClient *http.Client
}

// OpenRouterOption configures an OpenRouter provider.
type OpenRouterOption func(*OpenRouter)

// WithBaseURL sets a custom base URL (useful for proxies or compatible APIs).
func WithBaseURL(url string) OpenRouterOption {
	return func(o *OpenRouter) { o.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) OpenRouterOption {
	return func(o *OpenRouter) { o.httpClient = c }
}

// WithAppInfo sets the attribution headers OpenRouter shows on its dashboard.
func WithAppInfo(referer, title string) OpenRouterOption {
	return func(o *OpenRouter) {
		o.referer = referer
		o.title = title
	}
}

// NewOpenRouter creates an OpenRouter provider authenticated with apiKey.
func NewOpenRouter(apiKey string, opts ...OpenRouterOption) (*OpenRouter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &errs.OpError{
			Op:   "provider.openrouter",
			Kind: errs.KindMissingCredential,
			Err:  errs.ErrMissingCredential,
		}
	}

	o := &OpenRouter{
		apiKey:     apiKey,
		baseURL:    DefaultOpenRouterURL,
		httpClient: httpclient.New(httpclient.DefaultConfig()),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Query sends a chat completion to a model and returns the response.
func (o *OpenRouter) Query(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	o.authorize(httpReq)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readBody(resp.Body)
	if err != nil {
		return Response{}, err
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, parseAPIError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return Response{}, fmt.Errorf("parsing response: %w", err)
	}

	// OpenRouter can report upstream failures inside a 200 body.
	if chatResp.Error != nil {
		return Response{}, parseAPIError(resp.StatusCode, respBody)
	}

	if len(chatResp.Choices) == 0 {
		return Response{}, errors.New("no choices in response")
	}

	return Response{
		Model:    req.Model,
		Content:  chatResp.Choices[0].Message.Content,
		Provider: "openrouter",
		Latency:  time.Since(start),
	}, nil
}

// Model describes one entry in the provider's model catalogue.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	ContextLength int    `json:"context_length,omitempty"`
	Pricing       *Price `json:"pricing,omitempty"`
}

// Price is OpenRouter's per-token pricing, as decimal strings in USD.
type Price struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// ListModels fetches the model catalogue.
func (o *OpenRouter) ListModels(ctx context.Context) ([]Model, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	o.authorize(httpReq)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var parsed struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w; body=%s", err, truncate(string(body), 600))
	}

	return parsed.Data, nil
}

func readBody(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(b) > maxBodyBytes {
		return nil, fmt.Errorf("reading response: body exceeds %d bytes", maxBodyBytes)
	}
	return b, nil
}

func (o *OpenRouter) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.referer != "" {
		req.Header.Set("HTTP-Referer", o.referer)
	}
	if o.title != "" {
		req.Header.Set("X-Title", o.title)
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
