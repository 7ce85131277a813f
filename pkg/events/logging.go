package events

import (
	"context"
	"time"

	"github.com/SahilMindbowser/mb-meetings-poc/pkg/logger"
)

// LoggingMiddleware logs each publish with its outcome and latency.
func LoggingMiddleware(log *logger.Logger) ProducerMiddleware {
	return func(ctx context.Context, msg Message, next func(ctx context.Context, msg Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		duration := time.Since(start)

		if err != nil {
			log.Error("Event publish failed",
				"event_id", msg.Headers[HeaderEventID],
				"event_type", msg.Headers[HeaderEventType],
				"key", msg.Key,
				"duration_ms", duration.Milliseconds(),
				"error", err,
			)
			return err
		}

		log.Debug("Event published",
			"event_id", msg.Headers[HeaderEventID],
			"event_type", msg.Headers[HeaderEventType],
			"key", msg.Key,
			"duration_ms", duration.Milliseconds(),
		)
		return nil
	}
}
