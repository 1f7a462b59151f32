package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pot-code/learniq-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "sk-test-123"

type upstreamStub struct {
	*httptest.Server
	calls int32
	last  CompletionRequest
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstreamStub {
	stub := new(upstreamStub)
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&stub.calls, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &stub.last)
		handler(w, r)
	}))
	t.Cleanup(stub.Close)
	return stub
}

func reply(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{"message": map[string]interface{}{"role": "assistant", "content": content}},
			},
		})
	}
}

func newTestRelay(url string) *Relay {
	return NewRelay(NewHTTPCompleter(url, testKey, 5*time.Second), "gpt-4o-mini", testKey)
}

func TestRelayHello(t *testing.T) {
	upstream := newUpstream(t, reply("hello"))
	relay := newTestRelay(upstream.URL)

	answer, err := relay.Relay(context.Background(), NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, "hello", answer)
	assert.Equal(t, "gpt-4o-mini", upstream.last.Model)
	assert.Equal(t, Temperature, upstream.last.Temperature)
	require.Len(t, upstream.last.Messages, 1)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(upstream.last.Messages[0]))
}

func TestRelayForwardsVerbatim(t *testing.T) {
	upstream := newUpstream(t, reply("ok"))
	relay := newTestRelay(upstream.URL)

	transcript, err := ParseTranscript(json.RawMessage(`[{"role":"user","content":"hi","name":"ada"},{"role":"assistant","content":"yo"}]`))
	require.NoError(t, err)
	_, err = relay.Relay(context.Background(), transcript)
	require.NoError(t, err)
	require.Len(t, upstream.last.Messages, 2)
	assert.JSONEq(t, `{"role":"user","content":"hi","name":"ada"}`, string(upstream.last.Messages[0]))
}

func TestRelayEmptyContent(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":null}}]}`))
	})
	answer, err := newTestRelay(upstream.URL).Relay(context.Background(), NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, "", answer)

	none := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	answer, err = newTestRelay(none.URL).Relay(context.Background(), NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, "", answer)
}

func TestRelayUpstreamFailure(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided: ` + testKey + `"}}`))
	})

	_, err := newTestRelay(upstream.URL).Relay(context.Background(), NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUpstream))

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.True(t, json.Valid(ue.Detail))
	assert.NotContains(t, string(ue.Detail), testKey)
	assert.Contains(t, string(ue.Detail), redacted)
	assert.EqualValues(t, 1, upstream.calls, "no retry")
}

func TestRelayPlainTextFailure(t *testing.T) {
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := newTestRelay(upstream.URL).Relay(context.Background(), NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.JSONEq(t, `"bad gateway\n"`, string(ue.Detail))
}

func TestRelayTransportFailure(t *testing.T) {
	_, err := newTestRelay("http://127.0.0.1:1").Relay(context.Background(), NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestRelayCancellation(t *testing.T) {
	release := make(chan struct{})
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		reply("too late")(w, r)
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	answer, err := newTestRelay(upstream.URL).Relay(ctx, NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, "", answer)
	assert.False(t, errors.Is(err, domain.ErrUpstream))
}

func TestParseTranscript(t *testing.T) {
	for _, raw := range []string{``, `null`, `"not-an-array"`, `{"role":"user"}`, `[1,`} {
		_, err := ParseTranscript(json.RawMessage(raw))
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest), "input %q", raw)
	}

	transcript, err := ParseTranscript(json.RawMessage(` [] `))
	require.NoError(t, err)
	assert.Len(t, transcript, 0)
}

func TestRelayDeadline(t *testing.T) {
	release := make(chan struct{})
	upstream := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		reply("too late")(w, r)
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	answer, err := newTestRelay(upstream.URL).Relay(ctx, NewTranscript(Message{Role: RoleUser, Content: "hi"}))
	assert.Equal(t, "", answer)
	require.True(t, errors.Is(err, domain.ErrUpstream))

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusGatewayTimeout, ue.StatusCode)
	assert.JSONEq(t, `"chat completion timed out"`, string(ue.Detail))
}
