package teams

import (
	"context"
	"fmt"

	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/repo/bridge"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms"
)

// Client routes Teams messages through the stateless bot bridge. Teams is
// attach-only: conversations come into existence when the bot is installed
// in a team, so group provisioning is unsupported and fails fast.
type Client struct {
	bridge *bridge.Client
}

var _ platforms.Client = (*Client)(nil)

func NewClient(bridgeClient *bridge.Client) *Client {
	return &Client{bridge: bridgeClient}
}

func (c *Client) Platform() models.Platform {
	return models.PlatformTeams
}

func (c *Client) Capabilities() platforms.Capabilities {
	return platforms.Capabilities{
		CanPostMessage: true,
		UsesBotBridge:  true,
	}
}

func (c *Client) CreateGroup(ctx context.Context, params platforms.CreateGroupParams) (*platforms.Group, error) {
	return nil, &models.PlatformNotSupportedError{Platform: models.PlatformTeams, Operation: "group provisioning"}
}

func (c *Client) CreateBot(ctx context.Context, groupID, callbackURL string) (*platforms.Bot, error) {
	return nil, &models.PlatformNotSupportedError{Platform: models.PlatformTeams, Operation: "bot provisioning"}
}

func (c *Client) PostMessage(ctx context.Context, params platforms.PostParams) error {
	if params.ConversationReference == "" {
		return models.NewPlatformError(models.PlatformTeams, "post message", fmt.Errorf("mapping has no conversation reference"))
	}

	err := c.bridge.Send(ctx, bridge.SendRequest{
		ConversationReferenceJSON: params.ConversationReference,
		Message:                   params.Text,
		SenderName:                params.SenderName,
	})
	if err != nil {
		return models.NewPlatformError(models.PlatformTeams, "post message", err)
	}
	return nil
}

func (c *Client) DestroyBot(ctx context.Context, botID string) error {
	// The Teams bot is uninstalled from the Teams admin surface, not by us.
	return nil
}

func (c *Client) ArchiveGroup(ctx context.Context, groupID string) error {
	return nil
}
