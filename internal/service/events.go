package service

import (
	"context"

	"collectify-be/internal/pkg/logger"
	"collectify-be/pkg/events"
)

// publishEvent never fails the caller: events are a side channel.
func publishEvent(ctx context.Context, pub events.Publisher, log logger.ILogger, event events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("Events", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
