package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"collectify-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uuid.UUID, buffer int) *Client {
	return &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
}

func TestHub_SendToUsers(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	alice, bob := uuid.New(), uuid.New()

	phone := newTestClient(hub, alice, 4)
	laptop := newTestClient(hub, alice, 4)
	other := newTestClient(hub, bob, 4)
	hub.Register(phone)
	hub.Register(laptop)
	hub.Register(other)
	assert.Equal(t, 2, hub.ConnectionCount(alice))

	hub.SendToUsers(context.Background(), []uuid.UUID{alice}, Message{Type: "group_event", Data: map[string]string{"k": "v"}})

	for _, c := range []*Client{phone, laptop} {
		require.Len(t, c.Send, 1)
		var got Message
		require.NoError(t, json.Unmarshal(<-c.Send, &got))
		assert.Equal(t, "group_event", got.Type)
	}
	assert.Len(t, other.Send, 0)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	c := newTestClient(hub, uuid.New(), 1)
	hub.Register(c)

	hub.Unregister(c)
	assert.NotPanics(t, func() { hub.Unregister(c) })
	assert.Equal(t, 0, hub.ConnectionCount(c.UserID))

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	userID := uuid.New()
	c := newTestClient(hub, userID, 1)
	hub.Register(c)

	msg := Message{Type: "group_event"}
	hub.SendToUsers(context.Background(), []uuid.UUID{userID}, msg)
	hub.SendToUsers(context.Background(), []uuid.UUID{userID}, msg)

	assert.Equal(t, 0, hub.ConnectionCount(userID))
}

func TestHub_ClusterMessageFromSelfIgnored(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	userID := uuid.New()
	c := newTestClient(hub, userID, 4)
	hub.Register(c)

	payload, _ := json.Marshal(Message{Type: "group_event"})
	own, _ := json.Marshal(clusterEnvelope{Origin: hub.instanceID, TargetUserIDs: []string{userID.String()}, Message: payload})
	foreign, _ := json.Marshal(clusterEnvelope{Origin: "other", TargetUserIDs: []string{userID.String(), "not-a-uuid"}, Message: payload})

	hub.handleClusterMessage(own)
	assert.Len(t, c.Send, 0)

	hub.handleClusterMessage(foreign)
	assert.Len(t, c.Send, 1)

	hub.handleClusterMessage([]byte("{broken"))
	assert.Len(t, c.Send, 1)
}
