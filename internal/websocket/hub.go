package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"collectify-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Message is the frame pushed to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clusterEnvelope struct {
	Origin        string          `json:"origin"`
	TargetUserIDs []string        `json:"target_user_ids"`
	Message       json.RawMessage `json:"message"`
}

type Hub struct {
	// UserID -> that user's connections (multi-device)
	clients map[uuid.UUID]map[*Client]struct{}
	mu      sync.RWMutex

	// Redis connection for cross-instance fan-out, nil when running alone
	rdb *redis.Client
	// instanceID lets a hub ignore its own messages coming back from Redis
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID.String()})
}

// Unregister is idempotent. Only the hub closes a client's Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	close(client.Send)

	if len(conns) == 0 {
		delete(h.clients, client.UserID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID.String()})
	}
}

// ConnectionCount reports the local connections of a user.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendToUsers delivers msg to every local connection of the given users and
// forwards it to the other instances.
func (h *Hub) SendToUsers(ctx context.Context, userIDs []uuid.UUID, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal message", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(userIDs, data)

	if h.rdb == nil {
		return
	}
	targets := make([]string, len(userIDs))
	for i, id := range userIDs {
		targets[i] = id.String()
	}
	envelope, _ := json.Marshal(clusterEnvelope{Origin: h.instanceID, TargetUserIDs: targets, Message: data})
	if err := h.rdb.Publish(ctx, clusterChannel, envelope).Err(); err != nil {
		h.logger.Warn("Hub", "Failed to publish to cluster", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) deliver(userIDs []uuid.UUID, data []byte) {
	var slow []*Client

	h.mu.RLock()
	for _, id := range userIDs {
		for client := range h.clients[id] {
			select {
			case client.Send <- data:
			default:
				slow = append(slow, client)
			}
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID.String()})
		h.Unregister(client)
	}
}

// Run relays messages published by other instances until ctx is done. It
// returns immediately without Redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}

	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleClusterMessage([]byte(msg.Payload))
		}
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var envelope clusterEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		h.logger.Warn("Hub", "Redis msg parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if envelope.Origin == h.instanceID {
		return
	}

	ids := make([]uuid.UUID, 0, len(envelope.TargetUserIDs))
	for _, raw := range envelope.TargetUserIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	h.deliver(ids, envelope.Message)
}

// PushGroupEvent wraps data as a "group_event" frame.
func (h *Hub) PushGroupEvent(ctx context.Context, userIDs []uuid.UUID, data map[string]interface{}) {
	h.SendToUsers(ctx, userIDs, Message{Type: "group_event", Data: data})
}
