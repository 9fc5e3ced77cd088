package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/interfaces"
)

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		// Extract common fields from payload if available
		var assessmentID, userID, riskLevel string
		if payload, ok := event.Payload.(map[string]interface{}); ok {
			if id, ok := payload["assessment_id"].(string); ok {
				assessmentID = id
			}
			if id, ok := payload["user_id"].(string); ok {
				userID = id
			}
			if r, ok := payload["risk_level"].(string); ok {
				riskLevel = r
			}
		}

		// Log event with structured fields
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if assessmentID != "" {
			logEvent = logEvent.Str("assessment_id", assessmentID)
		}
		if userID != "" {
			logEvent = logEvent.Str("user_id", userID)
		}
		if riskLevel != "" {
			logEvent = logEvent.Str("risk_level", riskLevel)
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	// Subscribe to all event types
	eventTypes := []interfaces.EventType{
		interfaces.EventAssessmentCreated,
		interfaces.EventAssessmentUpdated,
		interfaces.EventAssessmentDeleted,
		interfaces.EventRetentionPurgeDone,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Info().
		Int("event_type_count", len(eventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
