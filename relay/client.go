package relay

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one authenticated socket connection.
type Client struct {
	Conn     *websocket.Conn
	Send     chan []byte
	UserID   string
	Username string

	mu     sync.Mutex
	closed bool
}

// closeSend closes the send channel exactly once. The hub drops clients from
// its own goroutine while the client's read loop may still be writing, so
// every close and every queued write goes through c.mu.
func (c *Client) closeSend() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
	c.mu.Unlock()
}

// sendJSON queues a payload to this client only. It is a no-op once the hub
// has dropped the client, and drops the payload if the send buffer is full.
func (c *Client) sendJSON(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

// sendError emits the named error event back to the originating socket.
func (c *Client) sendError(msg string) {
	c.sendJSON(map[string]any{"action": "error", "message": msg})
}

func writePump(c *Client) {
	defer c.Conn.Close()

	// keepalive pings so idle chat sockets survive proxies
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
