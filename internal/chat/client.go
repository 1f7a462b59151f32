package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

// CompletionRequest body of a chat-completion call
type CompletionRequest struct {
	Model       string     `json:"model"`
	Messages    Transcript `json:"messages"`
	Temperature float64    `json:"temperature"`
}

// CompletionResponse the part of a chat-completion answer we read
type CompletionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Completer performs a single chat-completion round trip
type Completer interface {
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// ProviderError non-2xx answer of the chat-completion service
type ProviderError struct {
	StatusCode int
	Body       []byte
}

func (pe *ProviderError) Error() string {
	return http.StatusText(pe.StatusCode) + ": " + string(pe.Body)
}

// HTTPCompleter OpenAI compatible chat-completion client
type HTTPCompleter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Completer = &HTTPCompleter{}

// NewHTTPCompleter create a client posting to {baseURL}/v1/chat/completions
func NewHTTPCompleter(baseURL, apiKey string, timeout time.Duration) *HTTPCompleter {
	return &HTTPCompleter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complete no retry, no streaming
func (hc *HTTPCompleter) Complete(ctx context.Context, body *CompletionRequest) (*CompletionResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hc.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+hc.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: raw}
	}
	out := new(CompletionResponse)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: raw}
	}
	return out, nil
}
