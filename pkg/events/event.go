package events

import (
	"context"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTE_CREATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Publisher is satisfied by the NATS publisher and by test recorders.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

const (
	NoteCreated        = "NOTE_CREATED"
	NoteUpdated        = "NOTE_UPDATED"
	NoteDeleted        = "NOTE_DELETED"
	GroupUpdated       = "GROUP_UPDATED"
	GroupDeleted       = "GROUP_DELETED"
	GroupMemberAdded   = "GROUP_MEMBER_ADDED"
	GroupMemberRemoved = "GROUP_MEMBER_REMOVED"
)

// Payload keys shared by every group-scoped event.
const (
	KeyType       = "type"
	KeyOccurredAt = "occurred_at"
	KeyGroupID    = "group_id"
	KeyActorID    = "actor_id"
	KeyNoteID     = "note_id"
	KeyMemberID   = "member_id"
)

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewGroupEvent builds an event addressed to the members of groupId. The type
// and timestamp are copied into the payload so they survive the wire.
func NewGroupEvent(eventType string, groupId, actorId string, extra map[string]interface{}) BaseEvent {
	now := time.Now().UTC()
	data := map[string]interface{}{
		KeyType:       eventType,
		KeyOccurredAt: now.Format(time.RFC3339Nano),
		KeyGroupID:    groupId,
		KeyActorID:    actorId,
	}
	for k, v := range extra {
		data[k] = v
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: now}
}

// FromPayload rebuilds an event from a decoded payload. fallbackType is used
// when the payload carries no type of its own.
func FromPayload(payload map[string]interface{}, fallbackType string) BaseEvent {
	event := BaseEvent{Type: fallbackType, Data: payload, OccurredAt: time.Now().UTC()}
	if t, ok := payload[KeyType].(string); ok && t != "" {
		event.Type = t
	}
	if raw, ok := payload[KeyOccurredAt].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			event.OccurredAt = ts
		}
	}
	return event
}

// StringField returns payload[key] when it is a string.
func StringField(e Event, key string) string {
	s, _ := e.Payload()[key].(string)
	return s
}
