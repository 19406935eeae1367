package server

import (
	"context"
	"log/slog"

	"scribe/internal/middleware"
	"scribe/internal/notifications"
	"scribe/internal/observability"
)

// publishUserEvent delivers an event to every feed connection of userID.
// With Redis the event goes through pub/sub so all nodes see it, and the
// local hub receives it from its own subscription. Without Redis it is
// broadcast to this node only.
func (s *Server) publishUserEvent(ctx context.Context, userID uint, eventType string, payload map[string]interface{}) {
	message, err := notifications.EncodeEvent(eventType, payload)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode event",
			slog.String("event_type", eventType), slog.String("error", err.Error()))
		return
	}
	observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()

	if s.notifier.Enabled() {
		err := s.notifier.PublishUser(ctx, userID, message)
		if err == nil {
			return
		}
		middleware.Logger.WarnContext(ctx, "failed to publish event, delivering locally",
			slog.String("event_type", eventType),
			slog.Uint64("user_id", uint64(userID)),
			slog.String("error", err.Error()))
	}
	s.hub.Broadcast(userID, message)
}
