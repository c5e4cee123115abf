package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"collectify-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewSubscriber opens its own connection so publishing and consuming can be
// configured independently.
func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}

	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers a handler for a subject pattern such as "events.NOTE_*"
// on a durable consumer. The returned context stops consumption.
func (s *Subscriber) Subscribe(ctx context.Context, subject string, durableName string, handler EventHandler) (jetstream.ConsumeContext, error) {
	if err := ensureStream(ctx, s.js); err != nil {
		return nil, err
	}

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		var payload map[string]interface{}
		if err := json.Unmarshal(msg.Data(), &payload); err != nil {
			log.Printf("Error unmarshalling event data: %v", err)
			// Redelivery cannot fix a payload that does not parse.
			msg.Term()
			return
		}

		event := events.FromPayload(payload, strings.TrimPrefix(msg.Subject(), subjectPrefix))

		err := handler(ctx, event)
		if err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			msg.Nak() // Retry
			return
		}

		msg.Ack()
	})

	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return cc, nil
}

// Close closes the connection.
func (s *Subscriber) Close() {
	if s != nil && s.nc != nil {
		s.nc.Close()
	}
}
