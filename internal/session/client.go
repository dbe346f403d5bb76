package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"whiteboard/internal/metrics"
	"whiteboard/internal/models"
)

// sendBuffer is the per-client outbound queue depth. A peer that falls this
// far behind starts losing frames instead of blocking the sender.
const sendBuffer = 64

// Client is one live transport connection. User and room identity are set
// only after a successful authenticated join.
type Client struct {
	ID   string
	conn *websocket.Conn

	out  chan models.Frame
	quit chan struct{}

	mu     sync.Mutex
	hook   func(models.Frame)
	closed bool
	userID string
	roomID string
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		out:  make(chan models.Frame, sendBuffer),
		quit: make(chan struct{}),
	}
}

// SetSendHook replaces the queued WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(models.Frame)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// SetIdentity records the authenticated user and joined room. A re-join
// overwrites the room association without leaving the previous room.
func (c *Client) SetIdentity(userID, roomID string) {
	c.mu.Lock()
	c.userID = userID
	c.roomID = roomID
	c.mu.Unlock()
}

// Identity returns the authenticated user id and joined room id; both are
// empty until a join succeeds.
func (c *Client) Identity() (userID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.roomID
}

// Send queues a frame for delivery. It never blocks: when the outbound queue
// is full the frame is dropped.
func (c *Client) Send(frame models.Frame) {
	c.mu.Lock()
	hook := c.hook
	closed := c.closed
	c.mu.Unlock()
	if hook != nil {
		hook(frame)
		return
	}
	if closed || c.conn == nil {
		return
	}
	select {
	case c.out <- frame:
	default:
		// Drop rather than block the sender behind a slow peer.
		metrics.FrameDropped()
	}
}

// WritePump drains the outbound queue onto the connection. Run it on its own
// goroutine for the lifetime of the connection.
func (c *Client) WritePump() {
	for {
		select {
		case frame := <-c.out:
			if err := c.conn.WriteJSON(frame); err != nil {
				return
			}
		case <-c.quit:
			return
		}
	}
}

// Close stops the write pump. Idempotent; the underlying connection is owned
// and closed by the handler.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.quit)
}
