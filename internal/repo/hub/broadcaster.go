package hub

import (
	"context"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

var _ usecase.HubBroadcaster = (*Broadcaster)(nil)

// Broadcaster pushes message-created events to the realtime hub. Hub
// failures are logged and swallowed; realtime delivery is best-effort and
// must never fail the persistence path.
type Broadcaster struct {
	client *Client
}

func NewBroadcaster(client *Client) *Broadcaster {
	return &Broadcaster{client: client}
}

func (b *Broadcaster) BroadcastMessageCreated(ctx context.Context, eventID string, message *models.ChatMessage) {
	events := []Event{{
		EventID: eventID,
		Name:    "chat.message.created",
		Data:    message,
	}}
	if err := b.client.SendEvents(ctx, events); err != nil {
		log.Errorw(ctx, "failed to broadcast message to hub",
			"event_id", eventID,
			"message_id", message.ID.Hex(),
			"error", err)
	}
}
