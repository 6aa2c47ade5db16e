package kafka

import (
	"context"

	log "github.com/carousell/ct-go/pkg/logger/log_context"

	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

// EventHandler processes one decoded bus event.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *models.BusEvent) error
}

// eventHandler feeds platform message.sent events into the external fan-out
// dispatcher.
type eventHandler struct {
	fanout usecase.ExternalFanout
}

func NewEventHandler(fanout usecase.ExternalFanout) EventHandler {
	return &eventHandler{fanout: fanout}
}

func (h *eventHandler) HandleEvent(ctx context.Context, event *models.BusEvent) error {
	if event.Pattern != models.PatternMessageSent {
		log.Debugw(ctx, "ignoring bus event", "pattern", event.Pattern)
		return nil
	}

	// External messages already reached the externals they came from; the
	// system sender marks them and skipping prevents an echo loop.
	if event.Data.SenderID == models.SystemActor.UserID {
		log.Debugw(ctx, "skipping system-sent event",
			"event_id", event.Data.EventID,
			"sender_id", event.Data.SenderID)
		return nil
	}
	if event.Data.EventID == "" || event.Data.Message == "" {
		log.Warnw(ctx, "discarding malformed bus event",
			"event_id", event.Data.EventID)
		return nil
	}

	h.fanout.Broadcast(event.Data.EventID, event.Data.SenderName, event.Data.Message)
	return nil
}
