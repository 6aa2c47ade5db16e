package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/incidentkit/chat-bridge/internal/config"
	"github.com/incidentkit/chat-bridge/internal/models"
)

// ServerClient is the bridge's view of the chat server: register routing
// tokens and forward inbound messages into the webhook pipeline.
type ServerClient struct {
	client *resty.Client
}

type registerReferenceRequest struct {
	Platform              string `json:"platform"`
	ConversationID        string `json:"conversationId"`
	ConversationReference string `json:"conversationReference"`
	ChannelID             string `json:"channelId,omitempty"`
	TenantID              string `json:"tenantId,omitempty"`
	InstalledByName       string `json:"installedByName,omitempty"`
}

type registerReferenceResponse struct {
	ID string `json:"id"`
}

func NewServerClient(conf *config.Config) *ServerClient {
	client := resty.New().
		SetBaseURL(conf.Bridge.ServerBaseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &ServerClient{client: client}
}

// RegisterReference upserts the conversation's routing token on the server
// and returns the mapping id the conversation resolved to.
func (c *ServerClient) RegisterReference(ctx context.Context, ref ConversationReference, referenceJSON, installedByName string) (string, error) {
	var resp registerReferenceResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(registerReferenceRequest{
			Platform:              string(models.PlatformTeams),
			ConversationID:        ref.Conversation.ID,
			ConversationReference: referenceJSON,
			ChannelID:             ref.ChannelID,
			TenantID:              ref.Conversation.TenantID,
			InstalledByName:       installedByName,
		}).
		SetResult(&resp).
		Put("/chat/external/conversation-reference")
	if err != nil {
		return "", fmt.Errorf("register conversation reference: %w", err)
	}
	if httpResp.IsError() {
		return "", fmt.Errorf("register conversation reference: status %d", httpResp.StatusCode())
	}
	if resp.ID == "" {
		return "", fmt.Errorf("register conversation reference: server returned no mapping id")
	}
	return resp.ID, nil
}

// ForwardMessage pushes one inbound activity into the server's webhook
// pipeline, where dedup and loop prevention apply like any other platform.
func (c *ServerClient) ForwardMessage(ctx context.Context, mappingID string, payload models.WebhookPayload) error {
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(fmt.Sprintf("/webhooks/%s/%s", models.PlatformTeams, mappingID))
	if err != nil {
		return fmt.Errorf("forward message: %w", err)
	}
	if httpResp.IsError() {
		return fmt.Errorf("forward message: status %d", httpResp.StatusCode())
	}
	return nil
}
