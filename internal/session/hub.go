package session

import "sync"

// Hub is the registry of all collaboration rooms in this process. Rooms are
// created lazily on first join and retained for the life of the process.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewHub() *Hub { return &Hub{rooms: make(map[string]*Room)} }

// GetOrCreate returns the room for id, creating it with an empty document
// and empty participant set when unseen. Two first-joiners racing on the
// same id get the same instance.
func (h *Hub) GetOrCreate(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[id]; ok {
		return r
	}
	r := NewRoom(id)
	h.rooms[id] = r
	return r
}

// Get looks up a room without creating it. Change and leave handlers use this
// so that events referencing unknown rooms stay no-ops.
func (h *Hub) Get(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

// DropConnection removes the connection from every room it is still
// registered in. A re-join switches a session's room without leaving the
// previous one, so the old room keeps the connection until this sweep runs
// on disconnect. Participant entries are left alone.
func (h *Hub) DropConnection(c *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rooms {
		r.Drop(c)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}
