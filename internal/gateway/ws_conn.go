package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/pathforge/coach-backend/internal/transport"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireEnvelope is the raw frame from the browser; the payload stays undecoded
// until the message type is known.
type wireEnvelope struct {
	Type    transport.MessageType `json:"type"`
	Payload json.RawMessage       `json:"payload,omitempty"`
}

// WSConn adapts one websocket to the session's transport contract. Writes go
// through a buffered channel so a slow client never blocks the session; when
// the buffer fills, playback chunks are dropped rather than delayed.
type WSConn struct {
	ws       *websocket.Conn
	logger   *slog.Logger
	send     chan transport.ServerEvent
	messages chan transport.ClientEnvelope
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
}

func NewWSConn(ws *websocket.Conn, logger *slog.Logger) *WSConn {
	return &WSConn{
		ws:       ws,
		logger:   logger,
		send:     make(chan transport.ServerEvent, 256),
		messages: make(chan transport.ClientEnvelope, 256),
		done:     make(chan struct{}),
	}
}

func (c *WSConn) Send(_ context.Context, event transport.ServerEvent) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil
	}
	c.mu.RUnlock()

	select {
	case c.send <- event:
		return nil
	case <-c.done:
		return nil
	default:
		c.logger.Warn("send buffer full, dropping event", "type", event.Type)
		return nil
	}
}

func (c *WSConn) SendAudio(ctx context.Context, chunk transport.AudioChunk) error {
	return c.Send(ctx, transport.ServerEvent{Type: transport.MessageTypeAudio, Payload: chunk})
}

func (c *WSConn) Messages() <-chan transport.ClientEnvelope {
	return c.messages
}

func (c *WSConn) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *WSConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.ws.Close()
}

func (c *WSConn) readPump(ctx context.Context) {
	defer func() {
		close(c.messages)
		c.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
		}

		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error", "error", err)
			}
			return
		}

		var raw wireEnvelope
		if err := sonic.Unmarshal(message, &raw); err != nil {
			c.logger.Error("failed to unmarshal client message", "error", err)
			continue
		}

		env, err := decodeEnvelope(raw)
		if err != nil {
			c.logger.Error("failed to decode client payload", "type", raw.Type, "error", err)
			continue
		}

		select {
		case c.messages <- env:
		case <-ctx.Done():
			return
		case <-c.done:
			return
		default:
			c.logger.Warn("message buffer full, dropping message", "type", env.Type)
		}
	}
}

// decodeEnvelope maps a raw payload to its concrete type so downstream code
// never touches JSON.
func decodeEnvelope(raw wireEnvelope) (transport.ClientEnvelope, error) {
	env := transport.ClientEnvelope{Type: raw.Type}

	switch raw.Type {
	case transport.MessageTypeAudioFrame:
		var p transport.AudioFramePayload
		if err := sonic.Unmarshal(raw.Payload, &p); err != nil {
			return env, err
		}
		env.Payload = p
	case transport.MessageTypeStart:
		var p transport.StartPayload
		if len(raw.Payload) > 0 {
			if err := sonic.Unmarshal(raw.Payload, &p); err != nil {
				return env, err
			}
		}
		env.Payload = p
	}

	return env, nil
}

func (c *WSConn) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := sonic.Marshal(event)
			if err != nil {
				c.logger.Error("failed to marshal event", "type", event.Type, "error", err)
				continue
			}

			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
