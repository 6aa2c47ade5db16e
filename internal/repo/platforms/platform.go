package platforms

import (
	"context"

	"github.com/incidentkit/chat-bridge/internal/models"
)

// Capabilities declares which operations a platform client supports.
// Provisioning platforms (GroupMe) can create and tear down groups; bridged
// platforms (Teams) only attach to conversations that already exist.
type Capabilities struct {
	CanProvisionGroup bool `json:"can_provision_group"`
	CanPostMessage    bool `json:"can_post_message"`
	CanArchiveGroup   bool `json:"can_archive_group"`
	UsesBotBridge     bool `json:"uses_bot_bridge"`
}

// CreateGroupParams describes the external group to provision.
type CreateGroupParams struct {
	Name        string
	Description string
	// Webhook secret baked into the bot callback URL so inbound calls can
	// be validated against the mapping.
	WebhookSecret string
	MappingID     string
}

// Group is the provisioned external group.
type Group struct {
	ID       string
	Name     string
	ShareURL string
}

// Bot is the messaging identity attached to a provisioned group.
type Bot struct {
	ID string
}

// PostParams is a single outbound message delivery. ConversationReference
// is only set for bot-bridge platforms and is always supplied by the
// caller, never looked up by the transport.
type PostParams struct {
	GroupID               string
	BotID                 string
	ConversationReference string
	SenderName            string
	Text                  string
}

// Client is the per-platform transport. Implementations are registered in
// the Registry; adding a platform is adding an implementation, not editing
// a dispatch table.
type Client interface {
	Platform() models.Platform
	Capabilities() Capabilities

	CreateGroup(ctx context.Context, params CreateGroupParams) (*Group, error)
	CreateBot(ctx context.Context, groupID, callbackURL string) (*Bot, error)
	PostMessage(ctx context.Context, params PostParams) error
	DestroyBot(ctx context.Context, botID string) error
	ArchiveGroup(ctx context.Context, groupID string) error
}
