package models

import "time"

// Patterns on the platform event bus.
const (
	PatternMessageSent = "message.sent"
)

// BusEvent is the envelope for events consumed from the platform bus.
type BusEvent struct {
	Pattern string       `json:"pattern"`
	Data    BusEventData `json:"data"`
}

// BusEventData carries a message created elsewhere in the platform that
// should be fanned out to the event's external channels.
type BusEventData struct {
	EventID    string    `json:"event_id"`
	ThreadID   string    `json:"thread_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
