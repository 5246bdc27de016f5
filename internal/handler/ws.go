package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/reelduel/matchmaking/internal/middleware"
	"github.com/reelduel/matchmaking/internal/notify"
)

// WSHandler bridges the Redis notification channel to a WebSocket so
// clients observe ticket transitions (found, timeout, error) without
// polling. Each connection subscribes to the caller's own participant
// channel only; events are forwarded verbatim as JSON text frames.
type WSHandler struct {
	Notifier *notify.Notifier
}

// NewWSHandler constructs a WSHandler over the given notifier.
func NewWSHandler(n *notify.Notifier) *WSHandler { return &WSHandler{Notifier: n} }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The matchmaking API is token-authenticated; origin enforcement
	// belongs to the fronting proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// Serve handles GET /v1/matchmaking/ws. JWTAuth has already resolved
// the participant (the token arrives as a query parameter on WebSocket
// upgrades). Returns 503 when Redis is not configured, in which case
// clients fall back to polling the status endpoint.
func (h *WSHandler) Serve(c echo.Context) error {
	ref, ok := middleware.Participant(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	sub := h.Notifier.Subscribe(ctx, ref.QueueID())
	if sub == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime channel unavailable"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		sub.Close()
		return err
	}
	defer conn.Close()
	defer sub.Close()

	// Reader goroutine: the client sends nothing meaningful, but reads
	// must be drained for close and pong frames to be processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	events := sub.Channel()
	for {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		case msg, open := <-events:
			if !open {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
