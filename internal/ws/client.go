package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 64

// outbound is a single frame queued for a subscriber. Droppable frames
// (typing signals) may be discarded when the queue is full; message-class
// frames may not.
type outbound struct {
	payload   []byte
	droppable bool
}

// Client is one websocket subscriber. Frames are queued on a bounded channel
// drained by a dedicated writer goroutine, so a slow reader never blocks the
// operation that produced the event.
type Client struct {
	conn      *websocket.Conn
	send      chan outbound
	done      chan struct{}
	info      ConnInfo
	closeOnce sync.Once
}

// NewClient wraps an upgraded connection and starts its writer goroutine.
func NewClient(conn *websocket.Conn, info ConnInfo) *Client {
	c := &Client{
		conn: conn,
		send: make(chan outbound, sendBufferSize),
		done: make(chan struct{}),
		info: info,
	}
	go c.writeLoop()
	return c
}

// Info returns the connection metadata captured at handshake time.
func (c *Client) Info() ConnInfo {
	return c.info
}

// Close shuts the connection down; safe to call from any goroutine and
// idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Done is closed once the client has been shut down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) writeLoop() {
	for {
		select {
		case out := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, out.payload); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// enqueue queues a frame without blocking. It reports false only when the
// queue is full and the frame must not be dropped; the caller then closes the
// lagging client, which resynchronizes via the history endpoint on reconnect.
func (c *Client) enqueue(out outbound) bool {
	select {
	case <-c.done:
		return true
	default:
	}

	select {
	case c.send <- out:
		return true
	default:
		return out.droppable
	}
}
