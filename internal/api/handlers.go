package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"whiteboard/internal/auth"
	"whiteboard/internal/metrics"
	"whiteboard/internal/models"
	"whiteboard/internal/presence"
	"whiteboard/internal/session"
)

const sessionCookie = "whiteboard_session"

type Handlers struct {
	log      *zap.Logger
	verifier *auth.Verifier
	hub      *session.Hub
	presence *presence.Publisher
	upgrader websocket.Upgrader
}

func NewHandlers(log *zap.Logger, verifier *auth.Verifier, hub *session.Hub, pub *presence.Publisher) *Handlers {
	return &Handlers{
		log:      log,
		verifier: verifier,
		hub:      hub,
		presence: pub,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// SSO is the browser entry point: the main app redirects here with a freshly
// minted token, we verify it, drop a session cookie and hand over the client.
func (h *Handlers) SSO(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = auth.ExtractTokenFromHeader(r.Header.Get("Authorization"))
	}
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}
	if _, err := h.verifier.Verify(token); err != nil {
		http.Error(w, "invalid SSO token", http.StatusUnauthorized)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

/*** Whiteboard WebSocket: room membership + document fan-out ***/

func (h *Handlers) RoomWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(conn)
	go client.WritePump()
	defer client.Close()

	metrics.ConnOpened()
	defer metrics.ConnClosed()
	defer h.disconnect(client)

	for {
		var frame models.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case "join-room":
			var req models.JoinRequest
			unmarshal(frame.Data, &req)
			h.joinRoom(client, req)

		case "document-change":
			var changes map[string]any
			unmarshal(frame.Data, &changes)
			h.documentChange(client, changes)

		default:
			// Unknown event types are dropped; one misbehaving connection
			// must never disturb the room.
			h.log.Debug("dropped unknown event",
				zap.String("type", frame.Type), zap.String("connId", client.ID))
		}
	}
}

// joinRoom authenticates the connection and moves it into the requested
// room. On auth failure the session stays unauthenticated and only the
// offending connection hears about it; the transport is left open.
func (h *Handlers) joinRoom(client *session.Client, req models.JoinRequest) {
	claims, err := h.verifier.Verify(req.Token)
	if err != nil {
		result := "invalid"
		if auth.Expired(err) {
			result = "expired"
		}
		metrics.JoinResult(result)
		h.log.Info("rejected join",
			zap.String("roomId", req.RoomID),
			zap.String("connId", client.ID),
			zap.String("reason", result))
		client.Send(models.Frame{Type: "auth-error"})
		return
	}

	// The roomId in the join event wins over any claim-carried project id.
	// Join queues the document snapshot to the client itself so that no
	// concurrent change can reach the joiner ahead of its snapshot.
	room := h.hub.GetOrCreate(req.RoomID)
	room.Join(client, claims.UserID)
	client.SetIdentity(claims.UserID, req.RoomID)

	metrics.JoinResult("ok")
	metrics.SetOpenRooms(h.hub.Len())

	room.Broadcast(client, models.Frame{Type: "user-joined", Data: models.UserEvent{UserID: claims.UserID}})
	metrics.Broadcast("user-joined")
	h.presence.Publish("user-joined", req.RoomID, claims.UserID, room.ParticipantCount())

	h.log.Info("user joined room",
		zap.String("roomId", req.RoomID),
		zap.String("userId", claims.UserID),
		zap.String("connId", client.ID))
}

// documentChange merges the changes into the caller's room and fans them out
// to every other participant. Changes from sessions that never joined, or
// whose room no longer resolves, are dropped without an error.
func (h *Handlers) documentChange(client *session.Client, changes map[string]any) {
	if changes == nil {
		return
	}
	userID, roomID := client.Identity()
	if userID == "" || roomID == "" {
		return
	}
	room, ok := h.hub.Get(roomID)
	if !ok {
		return
	}

	applied := room.ApplyChange(changes)
	metrics.DocumentChange()
	room.Broadcast(client, models.Frame{Type: "document-change", Data: models.ChangeEvent{Changes: applied, UserID: userID}})
	metrics.Broadcast("document-change")
}

// disconnect removes a joined session from its room and notifies the peers
// that stay behind. The closed connection is also swept out of any room a
// previous join left it registered in. For sessions that never joined there
// is only the sweep, which finds nothing.
func (h *Handlers) disconnect(client *session.Client) {
	defer h.hub.DropConnection(client)

	userID, roomID := client.Identity()
	if userID == "" || roomID == "" {
		return
	}
	room, ok := h.hub.Get(roomID)
	if !ok {
		return
	}

	left := room.Leave(client, userID)
	room.Broadcast(client, models.Frame{Type: "user-left", Data: models.UserEvent{UserID: userID}})
	metrics.Broadcast("user-left")
	h.presence.Publish("user-left", roomID, userID, room.ParticipantCount())

	h.log.Info("user left room",
		zap.String("roomId", roomID),
		zap.String("userId", userID),
		zap.String("connId", client.ID),
		zap.Int("clientsLeft", left))
}

func unmarshal(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }
