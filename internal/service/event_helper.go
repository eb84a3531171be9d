package service

import (
	"context"

	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/pkg/events"
)

// publishEvent is fire-and-forget: a bus outage is logged and never fails the caller.
func publishEvent(ctx context.Context, pub events.Publisher, log logger.ILogger, eventType string, data map[string]interface{}) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.New(eventType, data)); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
