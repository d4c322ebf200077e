package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
)

// APIError is a non-success reply from a provider's HTTP API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
}

// IsInsufficientCredits reports whether err means the account ran out of
// credit or quota (HTTP 402, or the equivalent error code in the body).
func IsInsufficientCredits(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode == http.StatusPaymentRequired {
		return true
	}
	switch apiErr.Code {
	case "402", "insufficient_quota", "insufficient_credits":
		return true
	}
	return false
}

// parseAPIError builds an APIError from a response body. Providers wrap
// errors as {"error": {"code": ..., "message": ...}}; anything else is kept
// as the raw (truncated) body.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: status,
		Body:       truncate(string(body), 600),
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return apiErr
	}

	if v, err := jsonpath.Get("$.error.message", doc); err == nil {
		if s, ok := v.(string); ok {
			apiErr.Message = s
		}
	}
	if v, err := jsonpath.Get("$.error.code", doc); err == nil {
		switch c := v.(type) {
		case float64:
			apiErr.Code = strconv.Itoa(int(c))
		case string:
			apiErr.Code = c
		}
	}

	return apiErr
}

// truncate shortens s to max runes so diagnostics stay valid UTF-8.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
