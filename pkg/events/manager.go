package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

// ConnectionManager manages WebSocket connections and their channel
// subscriptions, bridging the in-process broadcaster to clients.
type ConnectionManager struct {
	broadcaster  *Broadcaster
	writeTimeout time.Duration

	mu          sync.Mutex
	connections map[string]*connection

	logger *slog.Logger
}

// connection is a single WebSocket client.
//
// subscriptions is only touched from the connection's read loop and its
// deferred cleanup, so it needs no lock. Writes to the socket are serialized
// by writeMu because forwarder goroutines write concurrently.
type connection struct {
	id   string
	conn *websocket.Conn
	ctx  context.Context

	writeMu       sync.Mutex
	subscriptions map[string]*Subscription
	wg            sync.WaitGroup
}

// NewConnectionManager creates a ConnectionManager.
func NewConnectionManager(broadcaster *Broadcaster, writeTimeout time.Duration) *ConnectionManager {
	return &ConnectionManager{
		broadcaster:  broadcaster,
		writeTimeout: writeTimeout,
		connections:  make(map[string]*connection),
		logger:       slog.Default().With("component", "ws-manager"),
	}
}

// ConnectionCount returns the number of active WebSocket connections.
func (m *ConnectionManager) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

// HandleConnection serves an accepted WebSocket connection's
// subscribe/unsubscribe/ping protocol until the client disconnects.
// Blocks for the lifetime of the connection.
func (m *ConnectionManager) HandleConnection(ctx context.Context, ws *websocket.Conn) {
	c := &connection{
		id:            uuid.NewString(),
		conn:          ws,
		ctx:           ctx,
		subscriptions: make(map[string]*Subscription),
	}

	m.mu.Lock()
	m.connections[c.id] = c
	m.mu.Unlock()
	m.logger.Info("WebSocket client connected", "connection_id", c.id)

	defer func() {
		for _, sub := range c.subscriptions {
			m.broadcaster.Unsubscribe(sub)
		}
		c.wg.Wait()

		m.mu.Lock()
		delete(m.connections, c.id)
		m.mu.Unlock()

		_ = ws.Close(websocket.StatusNormalClosure, "")
		m.logger.Info("WebSocket client disconnected", "connection_id", c.id)
	}()

	for {
		var msg ClientMessage
		if err := wsjson.Read(c.ctx, ws, &msg); err != nil {
			return
		}
		m.handleMessage(c, msg)
	}
}

func (m *ConnectionManager) handleMessage(c *connection, msg ClientMessage) {
	switch msg.Action {
	case "subscribe":
		if msg.Channel == "" {
			m.write(c, ServerMessage{Type: "error", Message: "subscribe requires a channel"})
			return
		}
		if _, ok := c.subscriptions[msg.Channel]; ok {
			return
		}
		sub := m.broadcaster.Subscribe(msg.Channel)
		c.subscriptions[msg.Channel] = sub

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for payload := range sub.C() {
				m.write(c, ServerMessage{Type: "update", Channel: sub.Channel(), Payload: payload})
			}
		}()

		m.write(c, ServerMessage{Type: "subscribed", Channel: msg.Channel})

	case "unsubscribe":
		if sub, ok := c.subscriptions[msg.Channel]; ok {
			delete(c.subscriptions, msg.Channel)
			m.broadcaster.Unsubscribe(sub)
			m.write(c, ServerMessage{Type: "unsubscribed", Channel: msg.Channel})
		}

	case "ping":
		m.write(c, ServerMessage{Type: "pong"})

	default:
		m.write(c, ServerMessage{Type: "error", Message: "unknown action: " + msg.Action})
	}
}

func (m *ConnectionManager) write(c *connection, msg ServerMessage) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(c.ctx, m.writeTimeout)
	defer cancel()

	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		m.logger.Warn("WebSocket write failed", "connection_id", c.id, "error", err)
	}
}
