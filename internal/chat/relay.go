package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pot-code/learniq-api/internal/infrastructure/logging"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// Temperature sampling temperature of every relayed call
const Temperature = 0.7

const (
	redacted    = "[REDACTED]"
	errTimedOut = "chat completion timed out"
)

// Relay forwards transcripts to a Completer with a fixed model
type Relay struct {
	completer Completer
	model     string
	secrets   [][]byte
}

var _ Relayer = &Relay{}

// NewRelay secrets are scrubbed from every diagnostic payload leaving the relay
func NewRelay(completer Completer, model string, secrets ...string) *Relay {
	relay := &Relay{completer: completer, model: model}
	for _, s := range secrets {
		if s != "" {
			relay.secrets = append(relay.secrets, []byte(s))
		}
	}
	return relay
}

// Relay send the transcript upstream and return the first choice's content, empty when
// the provider returned none. A cancelled ctx yields context.Canceled and never a reply,
// an expired deadline is reported as an upstream failure
func (r *Relay) Relay(ctx context.Context, transcript Transcript) (string, error) {
	apmSpan, ctx := apm.StartSpan(ctx, "Relay.Relay", "service")
	defer apmSpan.End()

	if err := ctx.Err(); err != nil {
		return "", r.contextError(err)
	}

	resp, err := r.completer.Complete(ctx, &CompletionRequest{
		Model:       r.model,
		Messages:    transcript,
		Temperature: Temperature,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", r.contextError(ctxErr)
	}
	if err != nil {
		upstream := r.upstreamError(err)
		logging.ExtractLoggerFromContext(ctx).Error("chat completion failed",
			zap.Int("http.response.status_code", upstream.StatusCode),
			zap.ByteString("error.detail", upstream.Detail),
		)
		return "", upstream
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", nil
	}
	return *resp.Choices[0].Message.Content, nil
}

func (r *Relay) contextError(err error) error {
	if !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	detail, _ := json.Marshal(errTimedOut)
	return &UpstreamError{StatusCode: http.StatusGatewayTimeout, Detail: detail}
}

func (r *Relay) upstreamError(err error) *UpstreamError {
	upstream := new(UpstreamError)

	var detail []byte
	var pe *ProviderError
	if errors.As(err, &pe) {
		upstream.StatusCode = pe.StatusCode
		detail = pe.Body
	}
	if !json.Valid(detail) || len(bytes.TrimSpace(detail)) == 0 {
		source := err.Error()
		if pe != nil && len(bytes.TrimSpace(pe.Body)) > 0 {
			source = string(pe.Body)
		}
		detail, _ = json.Marshal(source)
	}
	upstream.Detail = r.redact(detail)
	return upstream
}

func (r *Relay) redact(payload []byte) json.RawMessage {
	for _, s := range r.secrets {
		payload = bytes.ReplaceAll(payload, s, []byte(redacted))
	}
	return payload
}
