package infra

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/learniq-api/internal/infrastructure/logging"
	"go.uber.org/zap"
)

var (
	writeWait    = 10 * time.Second
	pongWait     = 30 * time.Second
	pingInterval = pongWait * 9 / 10
)

// Websocket upgrades echo requests to websocket sessions
type Websocket struct {
	upgrader websocket.Upgrader
}

// WSConn websocket connection safe for concurrent writers
type WSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WSHandler serves a whole session, the connection is closed once it returns
type WSHandler func(ctx context.Context, conn *WSConn) error

// NewWebsocket create a Websocket accepting handshakes from allowOrigins only,
// "*" accepts any origin
func NewWebsocket(allowOrigins []string) *Websocket {
	allowed := make(map[string]bool, len(allowOrigins))
	for _, origin := range allowOrigins {
		allowed[origin] = true
	}
	return &Websocket{
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 3 * time.Second,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// WithHeartbeat wrap handler function with heartbeat probe
func (ws *Websocket) WithHeartbeat(handler WSHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := ws.upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// upgrader has already written the handshake error
			return nil
		}

		ctx, cancel := context.WithCancel(c.Request().Context())
		wc := &WSConn{conn: conn}
		defer func() {
			cancel()
			conn.Close()
		}()

		go heartbeatRoutine(ctx, conn)
		if err := handler(ctx, wc); err != nil && !isNormalClose(err) {
			logging.ExtractLoggerFromContext(ctx).Debug("websocket session closed", zap.Error(err))
		}
		return nil
	}
}

func heartbeatRoutine(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}

// ReadFrame read next data frame, the read deadline is extended with every pong received
func (wc *WSConn) ReadFrame() ([]byte, error) {
	wc.conn.SetReadDeadline(time.Now().Add(pongWait))
	wc.conn.SetPongHandler(func(string) error {
		return wc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	_, message, err := wc.conn.ReadMessage()
	return message, err
}

// WriteJSON write v as a text frame, may be called from multiple goroutines
func (wc *WSConn) WriteJSON(v interface{}) error {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	wc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return wc.conn.WriteJSON(v)
}
