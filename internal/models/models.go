package models

import "time"

// Frame is the JSON envelope for every WebSocket event.
type Frame struct {
	Type string `json:"type"` // "join-room","document-change","document","user-joined","user-left","auth-error"
	Data any    `json:"data"`
}

// JoinRequest is the payload of a "join-room" event. The roomId here takes
// precedence over any project id carried inside the token.
type JoinRequest struct {
	RoomID string `json:"roomId"`
	Token  string `json:"token"`
}

// UserEvent carries the subject of "user-joined" and "user-left" notices.
type UserEvent struct {
	UserID string `json:"userId"`
}

// ChangeEvent is the outbound payload of a "document-change" notice: the
// applied changes plus the user that originated them.
type ChangeEvent struct {
	Changes map[string]any `json:"changes"`
	UserID  string         `json:"userId"`
}

// PresenceEvent mirrors a room membership change to Redis so the main
// backend and sibling instances can observe occupancy.
type PresenceEvent struct {
	Type       string    `json:"type"` // "user-joined" or "user-left"
	RoomID     string    `json:"roomId"`
	UserID     string    `json:"userId"`
	InstanceID string    `json:"instanceId"`
	Timestamp  time.Time `json:"timestamp"`
}
