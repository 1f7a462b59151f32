package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/learniq-api/internal/chat"
	"github.com/pot-code/learniq-api/internal/domain"
	infra "github.com/pot-code/learniq-api/internal/infrastructure"
	"github.com/pot-code/learniq-api/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// public chat error messages
const (
	errMessagesNotArray = "messages must be an array"
	errChatFailed       = "Chat completion request failed"
	errInvalidFrame     = "Invalid frame"
)

type ChatHandler struct {
	relay chat.Relayer
}

func NewChatHandler(Relay chat.Relayer) *ChatHandler {
	return &ChatHandler{Relay}
}

type chatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

type chatReply struct {
	Reply string `json:"reply"`
}

// HandleChat POST /api/chat. A client that went away before the upstream answered gets nothing,
// a request that ran out of time gets the upstream failure body
func (ch *ChatHandler) HandleChat(c echo.Context) error {
	req := new(chatRequest)
	if err := json.NewDecoder(c.Request().Body).Decode(req); err != nil {
		return c.JSON(http.StatusBadRequest, ChatError{Error: errMessagesNotArray})
	}
	transcript, err := chat.ParseTranscript(req.Messages)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ChatError{Error: errMessagesNotArray})
	}

	ctx := c.Request().Context()
	reply, err := ch.relay.Relay(ctx, transcript)
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, chatErrorOf(err))
	}
	return c.JSON(http.StatusOK, chatReply{reply})
}

func chatErrorOf(err error) ChatError {
	var ue *chat.UpstreamError
	if errors.As(err, &ue) {
		return ChatError{Error: errChatFailed, Detail: ue.Detail}
	}
	if errors.Is(err, domain.ErrInvalidRequest) {
		return ChatError{Error: errMessagesNotArray}
	}
	detail, _ := json.Marshal(domain.ErrUpstream.Error())
	return ChatError{Error: errChatFailed, Detail: detail}
}

// chatFrame client frame, either a request carrying messages or a cancellation of request id
type chatFrame struct {
	ID       string          `json:"id"`
	Messages json.RawMessage `json:"messages"`
	Cancel   bool            `json:"cancel"`
}

type chatReplyFrame struct {
	ID     string          `json:"id"`
	Reply  *string         `json:"reply,omitempty"`
	Error  string          `json:"error,omitempty"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

type inflightChat struct {
	cancel context.CancelFunc
}

// HandleChatSocket relay every request frame concurrently. A cancelled request, or any request
// once the socket is gone, never gets a reply frame
func (ch *ChatHandler) HandleChatSocket(ctx context.Context, conn *infra.WSConn) error {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		inflight = make(map[string]*inflightChat)
	)
	defer func() {
		mu.Lock()
		for id, req := range inflight {
			req.cancel()
			delete(inflight, id)
		}
		mu.Unlock()
		wg.Wait()
	}()
	logger := logging.ExtractLoggerFromContext(ctx)

	for {
		raw, err := conn.ReadFrame()
		if err != nil {
			return err
		}

		frame := new(chatFrame)
		if err := json.Unmarshal(raw, frame); err != nil || frame.ID == "" {
			conn.WriteJSON(chatReplyFrame{ID: frame.ID, Error: errInvalidFrame})
			continue
		}

		if frame.Cancel {
			mu.Lock()
			if req, ok := inflight[frame.ID]; ok {
				req.cancel()
				delete(inflight, frame.ID)
			}
			mu.Unlock()
			continue
		}

		transcript, err := chat.ParseTranscript(frame.Messages)
		if err != nil {
			conn.WriteJSON(chatReplyFrame{ID: frame.ID, Error: errMessagesNotArray})
			continue
		}

		reqCtx, cancel := context.WithCancel(ctx)
		req := &inflightChat{cancel}
		mu.Lock()
		if prev, ok := inflight[frame.ID]; ok {
			prev.cancel()
		}
		inflight[frame.ID] = req
		mu.Unlock()

		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			reply, err := ch.relay.Relay(reqCtx, transcript)

			mu.Lock()
			defer mu.Unlock()
			// cancellation happens under mu, so checking here rules out a late reply
			if reqCtx.Err() != nil {
				return
			}
			if inflight[id] == req {
				delete(inflight, id)
			}
			req.cancel()

			out := chatReplyFrame{ID: id}
			if err != nil {
				body := chatErrorOf(err)
				out.Error, out.Detail = body.Error, body.Detail
			} else {
				out.Reply = &reply
			}
			if err := conn.WriteJSON(out); err != nil {
				logger.Debug("failed to write chat reply", zap.String("chat.id", id), zap.Error(err))
			}
		}(frame.ID)
	}
}
