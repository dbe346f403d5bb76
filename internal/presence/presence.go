package presence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"whiteboard/internal/models"
)

const (
	channel        = "whiteboard:presence"
	roomKeyPrefix  = "room:"
	roomTTL        = 24 * time.Hour
	publishTimeout = 2 * time.Second
)

// Publisher mirrors room membership changes to Redis so the main backend and
// sibling instances can observe occupancy. It is strictly fire-and-forget:
// failures are logged and never reach the room path, and the document itself
// is never written anywhere. A nil Publisher is a no-op.
type Publisher struct {
	rdb        *redis.Client
	log        *zap.Logger
	instanceID string
}

func NewPublisher(rdb *redis.Client, log *zap.Logger) *Publisher {
	return &Publisher{
		rdb:        rdb,
		log:        log,
		instanceID: uuid.NewString(),
	}
}

func (p *Publisher) InstanceID() string {
	if p == nil {
		return ""
	}
	return p.instanceID
}

// Publish records a membership change. Safe to call from connection handlers;
// the Redis round-trip happens on its own goroutine and never blocks the
// caller.
func (p *Publisher) Publish(eventType, roomID, userID string, participants int) {
	if p == nil || p.rdb == nil {
		return
	}
	event := models.PresenceEvent{
		Type:       eventType,
		RoomID:     roomID,
		UserID:     userID,
		InstanceID: p.instanceID,
		Timestamp:  time.Now(),
	}
	go p.publish(event, participants)
}

func (p *Publisher) publish(event models.PresenceEvent, participants int) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("marshal presence event", zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.log.Warn("publish presence event",
			zap.String("roomId", event.RoomID), zap.Error(err))
	}

	key := roomKeyPrefix + event.RoomID
	err = p.rdb.HSet(ctx, key, map[string]any{
		"roomId":       event.RoomID,
		"participants": participants,
		"updatedAt":    event.Timestamp.Format(time.RFC3339),
	}).Err()
	if err != nil {
		p.log.Warn("update room occupancy",
			zap.String("roomId", event.RoomID), zap.Error(err))
		return
	}
	p.rdb.Expire(ctx, key, roomTTL)
}
