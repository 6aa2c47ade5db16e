package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage belongs to exactly one ChatThread. Provenance is either
// internal (CreatedByID set, external fields empty) or external (platform
// fields set, system-user attribution). ExternalMessageID is the dedup key:
// a unique partial index on (external_source, external_message_id)
// guarantees at-most-one ingestion per platform message even when the
// webhook provider redelivers.
type ChatMessage struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ThreadID primitive.ObjectID `bson:"thread_id" json:"thread_id" validate:"required"`
	EventID  string             `bson:"event_id" json:"event_id" validate:"required"`
	Text     string             `bson:"text" json:"text"`

	CreatedByID   string `bson:"created_by_id" json:"created_by_id"`
	CreatedByName string `bson:"created_by_name" json:"created_by_name"`

	ExternalSource           Platform            `bson:"external_source,omitempty" json:"external_source,omitempty"`
	ExternalMessageID        string              `bson:"external_message_id,omitempty" json:"external_message_id,omitempty"`
	ExternalSenderName       string              `bson:"external_sender_name,omitempty" json:"external_sender_name,omitempty"`
	ExternalSenderID         string              `bson:"external_sender_id,omitempty" json:"external_sender_id,omitempty"`
	ExternalTimestamp        *time.Time          `bson:"external_timestamp,omitempty" json:"external_timestamp,omitempty"`
	ExternalAttachmentURL    string              `bson:"external_attachment_url,omitempty" json:"external_attachment_url,omitempty"`
	ExternalChannelMappingID *primitive.ObjectID `bson:"external_channel_mapping_id,omitempty" json:"external_channel_mapping_id,omitempty"`

	// Promotion fields are set together in a single update or not at all.
	PromotedToLogbookEntryID *primitive.ObjectID `bson:"promoted_to_logbook_entry_id,omitempty" json:"promoted_to_logbook_entry_id,omitempty"`
	PromotedToLogbookAt      *time.Time          `bson:"promoted_to_logbook_at,omitempty" json:"promoted_to_logbook_at,omitempty"`
	PromotedToLogbookByID    string              `bson:"promoted_to_logbook_by_id,omitempty" json:"promoted_to_logbook_by_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsExternal reports whether the message was ingested from a platform
// webhook rather than created by an internal user.
func (m *ChatMessage) IsExternal() bool {
	return m.ExternalSource != "" && m.ExternalMessageID != ""
}

// IsPromoted reports whether the message has been promoted to the logbook.
func (m *ChatMessage) IsPromoted() bool {
	return m.PromotedToLogbookEntryID != nil
}

// AttributionName is the display attribution used when promoting:
// "<sender> (via <platform>)" for external messages, the internal sender
// name otherwise.
func (m *ChatMessage) AttributionName() string {
	if m.IsExternal() {
		return m.ExternalSenderName + " (via " + platformDisplayName(m.ExternalSource) + ")"
	}
	return m.CreatedByName
}

func platformDisplayName(p Platform) string {
	switch p {
	case PlatformGroupMe:
		return "GroupMe"
	case PlatformTeams:
		return "Teams"
	case PlatformSlack:
		return "Slack"
	case PlatformSignal:
		return "Signal"
	}
	return string(p)
}
