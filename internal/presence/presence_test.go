package presence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whiteboard/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPublishMirrorsOccupancy(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	pub := NewPublisher(rdb, zap.NewNop())

	pub.Publish("user-joined", "proj-1", "u1", 2)

	waitUntil(t, func() bool { return mr.Exists("room:proj-1") })

	ctx := context.Background()
	fields, err := rdb.HGetAll(ctx, "room:proj-1").Result()
	require.NoError(t, err)
	assert.Equal(t, "proj-1", fields["roomId"])
	assert.Equal(t, "2", fields["participants"])
	assert.NotEmpty(t, fields["updatedAt"])

	ttl, err := rdb.TTL(ctx, "room:proj-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestPublishEmitsEvent(t *testing.T) {
	_, rdb := setupTestRedis(t)
	pub := NewPublisher(rdb, zap.NewNop())

	sub := rdb.Subscribe(context.Background(), "whiteboard:presence")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(context.Background())
	require.NoError(t, err, "subscription confirmation")

	pub.Publish("user-left", "proj-1", "u2", 0)

	select {
	case msg := <-sub.Channel():
		var event models.PresenceEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, "user-left", event.Type)
		assert.Equal(t, "proj-1", event.RoomID)
		assert.Equal(t, "u2", event.UserID)
		assert.Equal(t, pub.InstanceID(), event.InstanceID)
	case <-time.After(time.Second):
		t.Fatal("presence event never arrived")
	}
}

func TestPublishOverwritesOccupancy(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	pub := NewPublisher(rdb, zap.NewNop())

	pub.Publish("user-joined", "proj-1", "u1", 1)
	waitUntil(t, func() bool { return mr.Exists("room:proj-1") })

	pub.Publish("user-joined", "proj-1", "u2", 2)
	waitUntil(t, func() bool {
		v, err := rdb.HGet(context.Background(), "room:proj-1", "participants").Result()
		return err == nil && v == "2"
	})
}

func TestNilPublisherIsNoOp(t *testing.T) {
	var pub *Publisher
	pub.Publish("user-joined", "proj-1", "u1", 1)
	assert.Empty(t, pub.InstanceID())
}

func TestPublisherWithoutClientIsNoOp(t *testing.T) {
	pub := &Publisher{log: zap.NewNop()}
	pub.Publish("user-joined", "proj-1", "u1", 1)
}

func TestInstanceIDStable(t *testing.T) {
	_, rdb := setupTestRedis(t)
	pub := NewPublisher(rdb, zap.NewNop())
	require.NotEmpty(t, pub.InstanceID())
	assert.Equal(t, pub.InstanceID(), pub.InstanceID())
}
