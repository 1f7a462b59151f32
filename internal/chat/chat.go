package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pot-code/learniq-api/internal/domain"
)

// message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message one turn of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Transcript whole conversation, elements are forwarded upstream verbatim
type Transcript []json.RawMessage

// NewTranscript build a transcript from typed messages
func NewTranscript(messages ...Message) Transcript {
	transcript := make(Transcript, 0, len(messages))
	for _, m := range messages {
		raw, _ := json.Marshal(m)
		transcript = append(transcript, raw)
	}
	return transcript
}

// ErrMessagesNotArray messages absent or not a JSON array
var ErrMessagesNotArray = fmt.Errorf("messages must be an array: %w", domain.ErrInvalidRequest)

// ParseTranscript accept any JSON array as transcript, the elements are not inspected
func ParseTranscript(raw json.RawMessage) (Transcript, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMessagesNotArray
	}
	var transcript Transcript
	if err := json.Unmarshal(trimmed, &transcript); err != nil {
		return nil, ErrMessagesNotArray
	}
	return transcript, nil
}

// UpstreamError the chat-completion service failed, Detail carries its diagnostic payload
type UpstreamError struct {
	StatusCode int
	Detail     json.RawMessage
}

func (ue *UpstreamError) Error() string {
	if ue.StatusCode > 0 {
		return fmt.Sprintf("chat completion failed with status %d: %s", ue.StatusCode, ue.Detail)
	}
	return fmt.Sprintf("chat completion failed: %s", ue.Detail)
}

// Is match domain.ErrUpstream
func (ue *UpstreamError) Is(target error) bool {
	return target == domain.ErrUpstream
}

// Relayer stateless chat relay, the caller resends the full transcript every turn
type Relayer interface {
	Relay(ctx context.Context, transcript Transcript) (string, error)
}
