package usecase

import (
	"context"

	"github.com/incidentkit/chat-bridge/internal/models"
)

// HubBroadcaster pushes message-created events to the realtime hub.
// Implementations must be best-effort: a hub outage never fails the
// persistence path.
type HubBroadcaster interface {
	BroadcastMessageCreated(ctx context.Context, eventID string, message *models.ChatMessage)
}

// ExternalFanout delivers one internal message to all active external
// mappings of an event. Broadcast never blocks the caller and never
// returns an error to it; per-channel failures stay inside the dispatcher.
type ExternalFanout interface {
	Broadcast(eventID, senderName, text string)
	Shutdown()
}
