package session

import (
	"sync"

	"whiteboard/internal/models"
)

// Room holds the authoritative document state and connected clients for one
// collaboration session. All mutations go through the room mutex, so changes
// from concurrent connections are serialized by arrival order.
type Room struct {
	ID      string
	mu      sync.Mutex
	doc     map[string]any
	users   map[string]struct{}
	clients map[*Client]struct{}
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		doc:     make(map[string]any),
		users:   make(map[string]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Join registers the connection and its user and queues the document
// snapshot to the joiner before the lock is released. Registration and the
// snapshot send share one critical section: once a concurrent change can be
// broadcast to the joiner, the snapshot it will read first is already queued
// ahead of it. Send never blocks, so queueing under the lock is safe.
func (r *Room) Join(c *Client, userID string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c] = struct{}{}
	r.users[userID] = struct{}{}
	snapshot := copyDoc(r.doc)
	c.Send(models.Frame{Type: "document", Data: snapshot})
	return snapshot
}

// ApplyChange merges changes into the document key by key. Last write wins:
// a nested value is replaced wholesale, never merged field by field. Returns
// the applied changes verbatim for rebroadcast.
func (r *Room) ApplyChange(changes map[string]any) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range changes {
		r.doc[k] = v
	}
	return changes
}

// Leave removes the connection and its user from the room. Removing a user
// that never joined is a no-op. Returns the number of connections left.
func (r *Room) Leave(c *Client, userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
	delete(r.users, userID)
	return len(r.clients)
}

// Drop removes the connection from the room without touching the participant
// set. Used to sweep a closed connection out of rooms it was still registered
// in after a re-join.
func (r *Room) Drop(c *Client) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
}

// Snapshot returns a copy of the current document.
func (r *Room) Snapshot() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyDoc(r.doc)
}

// Participants returns the user ids currently joined.
func (r *Room) Participants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.users))
	for id := range r.users {
		out = append(out, id)
	}
	return out
}

func (r *Room) HasParticipant(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[userID]
	return ok
}

func (r *Room) ParticipantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Broadcast queues the frame for every client in the room except the sender.
// Delivery is fire-and-forget; a slow peer loses frames instead of blocking.
func (r *Room) Broadcast(sender *Client, frame models.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		if c == sender {
			continue
		}
		c.Send(frame)
	}
}

// BroadcastAll queues the frame for every client in the room.
func (r *Room) BroadcastAll(frame models.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.clients {
		c.Send(frame)
	}
}

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
