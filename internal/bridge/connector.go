package bridge

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/incidentkit/chat-bridge/internal/config"
)

// ConnectorClient posts activities back to the platform connector endpoint
// named inside each conversation reference. The endpoint varies per
// conversation (regional Teams connectors, local emulators), so the base
// URL comes from the reference, not from config.
type ConnectorClient struct {
	client             *resty.Client
	fallbackServiceURL string
}

type outboundActivity struct {
	Type         string              `json:"type"`
	From         ChannelAccount      `json:"from"`
	Recipient    ChannelAccount      `json:"recipient,omitempty"`
	Conversation ConversationAccount `json:"conversation"`
	Text         string              `json:"text"`
}

func NewConnectorClient(conf *config.Config) *ConnectorClient {
	client := resty.New().
		SetTimeout(15 * time.Second)
	return &ConnectorClient{
		client:             client,
		fallbackServiceURL: conf.Bridge.FallbackServiceURL,
	}
}

// Deliver posts one message activity into the conversation the reference
// addresses.
func (c *ConnectorClient) Deliver(ctx context.Context, ref *ConversationReference, text string) error {
	serviceURL := ref.ServiceURL
	if serviceURL == "" {
		serviceURL = c.fallbackServiceURL
	}
	if serviceURL == "" {
		return fmt.Errorf("conversation reference has no service url")
	}

	activity := outboundActivity{
		Type:         ActivityTypeMessage,
		From:         ref.Bot,
		Recipient:    ref.User,
		Conversation: ref.Conversation,
		Text:         text,
	}

	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities",
		serviceURL, url.PathEscape(ref.Conversation.ID))

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(activity).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("post activity: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post activity: connector returned status %d", resp.StatusCode())
	}
	return nil
}
