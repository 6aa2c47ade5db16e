package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExternalChannelMapping binds one event to one external group/conversation
// on one platform. Inbound traffic never mutates a mapping except
// ConversationReferenceJSON and LastActivityAt, which are refreshed on
// every inbound activity because the platform's routing endpoint can
// rotate over the conversation's lifetime.
type ExternalChannelMapping struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID           string             `bson:"event_id" json:"event_id" validate:"required"`
	Platform          Platform           `bson:"platform" json:"platform" validate:"required"`
	ExternalGroupID   string             `bson:"external_group_id" json:"external_group_id" validate:"required"`
	ExternalGroupName string             `bson:"external_group_name" json:"external_group_name"`
	BotID             string             `bson:"bot_id" json:"bot_id"`
	WebhookSecret     string             `bson:"webhook_secret" json:"-"`
	ShareURL          string             `bson:"share_url" json:"share_url"`
	IsActive          bool               `bson:"is_active" json:"is_active"`

	// Stateless-bridge routing. The serialized conversation reference is
	// opaque to this service; it is handed back to the bot bridge on every
	// outbound send so no bridge instance ever needs local state.
	ConversationReferenceJSON string     `bson:"conversation_reference_json" json:"-"`
	TenantID                  string     `bson:"tenant_id,omitempty" json:"tenant_id,omitempty"`
	LastActivityAt            *time.Time `bson:"last_activity_at,omitempty" json:"last_activity_at,omitempty"`
	InstalledByName           string     `bson:"installed_by_name,omitempty" json:"installed_by_name,omitempty"`
	IsEmulator                bool       `bson:"is_emulator" json:"is_emulator"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsRoutable reports whether an outbound send can be delivered through the
// stored conversation reference. GroupMe mappings route by bot id instead
// and are always routable while active.
func (m *ExternalChannelMapping) IsRoutable() bool {
	if !m.IsActive {
		return false
	}
	if m.Platform == PlatformGroupMe {
		return m.BotID != ""
	}
	return m.ConversationReferenceJSON != ""
}
