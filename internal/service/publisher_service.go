package service

import (
	"context"
	"encoding/json"
	"fmt"

	"collectify-be/internal/pkg/logger"
	"collectify-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// publisherService puts every domain event on the in-process bus, using the
// event type as topic, and forwards it to the external broker when one is
// configured.
type publisherService struct {
	pubSub   message.Publisher
	external events.Publisher
	log      logger.ILogger
}

func NewPublisherService(pubSub message.Publisher, external events.Publisher, log logger.ILogger) events.Publisher {
	return &publisherService{
		pubSub:   pubSub,
		external: external,
		log:      log,
	}
}

func (p *publisherService) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	if err := p.pubSub.Publish(event.EventType(), msg); err != nil {
		return fmt.Errorf("failed to publish %s in process: %w", event.EventType(), err)
	}

	if p.external != nil {
		if err := p.external.Publish(ctx, event); err != nil {
			p.log.Warn("PublisherService", "Failed to forward event to broker", map[string]interface{}{
				"type":  event.EventType(),
				"error": err.Error(),
			})
		}
	}
	return nil
}

// decodeMessage turns a bus message back into an event of the given topic.
func decodeMessage(topic string, msg *message.Message) (events.Event, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return events.FromPayload(payload, topic), nil
}
