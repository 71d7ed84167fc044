package websocket

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	sendBufferSize = 32
)

// Client represents one connected dashboard subscriber
type Client struct {
	id         string
	conn       *websocket.Conn
	send       chan []byte
	writeMu    sync.Mutex
	pingCancel context.CancelFunc // Cancel function for ping goroutine
	closeOnce  sync.Once
	log        *logrus.Entry
}

func newClient(id string, conn *websocket.Conn, log *logrus.Entry) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  log.WithField("client", id),
	}
}

// StartPing starts periodic ping to keep connection alive
func (c *Client) StartPing(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	c.pingCancel = cancel

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				// Context canceled, exit goroutine
				return
			case <-ticker.C:
				c.writeMu.Lock()
				err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
				c.writeMu.Unlock()
				if err != nil {
					c.log.WithError(err).Debug("Failed to send ping")
					return
				}
			}
		}
	}()
}

// WriteTextMessage sends a text message to the WebSocket connection thread-safely
func (c *Client) WriteTextMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("connection is nil")
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// enqueue hands data to the write pump. It reports false when the client is
// too slow and the message was dropped.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// writePump drains the send queue until it is closed.
func (c *Client) writePump() {
	for data := range c.send {
		if err := c.WriteTextMessage(data); err != nil {
			c.log.WithError(err).Debug("Write failed, dropping client")
			c.Close()
			// Keep draining so the hub never blocks on a closed client.
			for range c.send {
			}
			return
		}
	}
}

// readPump consumes inbound frames (pongs and close) until the peer goes
// away. Subscribers do not send commands over this channel.
func (c *Client) readPump(onClose func()) {
	defer onClose()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close stops the ping loop and closes the connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.pingCancel != nil {
			c.pingCancel()
		}
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
}
