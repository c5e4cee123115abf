package service

import (
	"context"

	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/pkg/mailer"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"
	"collectify-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService emails users who were added to a group.
type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	log          logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		uowFactory:   uowFactory,
		emailService: emailService,
		log:          log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := decodeMessage(cs.topicName, msg)
	if err != nil {
		cs.log.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	memberId, err := uuid.Parse(events.StringField(event, events.KeyMemberID))
	if err != nil {
		cs.log.Warn("ConsumerService", "Event without member id", map[string]interface{}{"type": event.EventType()})
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	member, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: memberId})
	if err != nil {
		cs.log.Error("ConsumerService", "Failed to load member", map[string]interface{}{"member_id": memberId.String(), "error": err.Error()})
		msg.Nack()
		return
	}
	if member == nil {
		msg.Ack() // user deleted meanwhile
		return
	}

	addedBy := "Someone"
	if actorId, err := uuid.Parse(events.StringField(event, events.KeyActorID)); err == nil {
		actor, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: actorId})
		if err == nil && actor != nil {
			addedBy = displayName(actor.Nickname, actor.Email)
		}
	}

	if err := cs.emailService.SendMemberAdded(member.Email, events.StringField(event, keyGroupName), addedBy); err != nil {
		// Mail delivery is best effort; retrying would spam on partial failures.
		cs.log.Warn("ConsumerService", "Member added email not sent", map[string]interface{}{"member_id": memberId.String(), "error": err.Error()})
	}
	msg.Ack()
}

func displayName(nickname *string, email string) string {
	if nickname != nil && *nickname != "" {
		return *nickname
	}
	return email
}
