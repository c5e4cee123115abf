package service

import (
	"context"
	"fmt"

	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/pkg/events"
	pktNats "collectify-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// NotificationDelivery pushes realtime updates, typically through the
// WebSocket hub.
type NotificationDelivery interface {
	PushGroupEvent(ctx context.Context, userIDs []uuid.UUID, data map[string]interface{})
}

// GroupEventTypes are the events forwarded to group members.
var GroupEventTypes = []string{
	events.NoteCreated,
	events.NoteUpdated,
	events.NoteDeleted,
	events.GroupUpdated,
	events.GroupDeleted,
	events.GroupMemberAdded,
	events.GroupMemberRemoved,
}

const notificationDurable = "notification-service"

type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	bus        message.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger

	consumeCtx jetstream.ConsumeContext
}

// NewNotificationService consumes from NATS when sub is non-nil and from the
// in-process bus otherwise.
func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub *pktNats.Subscriber, bus message.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		bus:        bus,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *NotificationService) Start(ctx context.Context) error {
	if s.subscriber != nil {
		cc, err := s.subscriber.Subscribe(ctx, pktNats.Subject(">"), notificationDurable, s.HandleEvent)
		if err != nil {
			return fmt.Errorf("failed to start notification subscriber: %w", err)
		}
		s.consumeCtx = cc
		s.logger.Info("NotificationService", "Listening on NATS", nil)
		return nil
	}

	for _, topic := range GroupEventTypes {
		messages, err := s.bus.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		go s.consume(ctx, topic, messages)
	}
	s.logger.Info("NotificationService", "Listening on in-process bus", nil)
	return nil
}

func (s *NotificationService) Stop() {
	if s.consumeCtx != nil {
		s.consumeCtx.Stop()
	}
}

func (s *NotificationService) consume(ctx context.Context, topic string, messages <-chan *message.Message) {
	for msg := range messages {
		event, err := decodeMessage(topic, msg)
		if err != nil {
			s.logger.Warn("NotificationService", "Dropping undecodable message", map[string]interface{}{"topic": topic})
			msg.Ack()
			continue
		}
		if err := s.HandleEvent(ctx, event); err != nil {
			msg.Nack()
			continue
		}
		msg.Ack()
	}
}

// HandleEvent pushes a group event to the group's members, the actor
// excluded. An error means the event may be retried.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	groupId, err := uuid.Parse(events.StringField(event, events.KeyGroupID))
	if err != nil {
		// not a group event
		return nil
	}

	recipients, err := s.recipients(ctx, event, groupId)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to resolve recipients", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
		return err
	}

	if actor, err := uuid.Parse(events.StringField(event, events.KeyActorID)); err == nil {
		recipients = without(recipients, actor)
	}
	if len(recipients) == 0 {
		return nil
	}

	s.delivery.PushGroupEvent(ctx, recipients, event.Payload())
	return nil
}

func (s *NotificationService) recipients(ctx context.Context, event events.Event, groupId uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	if event.EventType() == events.GroupDeleted {
		// memberships are gone by now, the event carries them
		raw, _ := event.Payload()[KeyMemberIDs].([]interface{})
		for _, v := range raw {
			if str, ok := v.(string); ok {
				if id, err := uuid.Parse(str); err == nil {
					ids = append(ids, id)
				}
			}
		}
		if strs, ok := event.Payload()[KeyMemberIDs].([]string); ok {
			for _, str := range strs {
				if id, err := uuid.Parse(str); err == nil {
					ids = append(ids, id)
				}
			}
		}
		return ids, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	members, err := uow.GroupMemberRepository().FindAll(ctx, specification.ByGroupID{GroupID: groupId})
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		ids = append(ids, m.MemberId)
	}

	// a removed member still hears about the removal
	if event.EventType() == events.GroupMemberRemoved {
		if id, err := uuid.Parse(events.StringField(event, events.KeyMemberID)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func without(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
