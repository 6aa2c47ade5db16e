package groupme

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/incidentkit/chat-bridge/internal/config"
	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms"
)

// Client talks to the GroupMe v3 REST API. GroupMe is a provisioning
// platform: the service creates the group and an attached bot, and posts
// outbound messages through the bot identity.
type Client struct {
	http  *resty.Client
	token string
}

var _ platforms.Client = (*Client)(nil)

func NewClient(conf *config.Config) *Client {
	http := resty.New().
		SetBaseURL(conf.GroupMe.BaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			retry, _ := retryablehttp.DefaultRetryPolicy(r.Request.Context(), r.RawResponse, err)
			return retry
		})
	http.JSONMarshal = json.Marshal
	http.JSONUnmarshal = json.Unmarshal

	return &Client{
		http:  http,
		token: conf.GroupMe.AccessToken,
	}
}

func (c *Client) Platform() models.Platform {
	return models.PlatformGroupMe
}

func (c *Client) Capabilities() platforms.Capabilities {
	return platforms.Capabilities{
		CanProvisionGroup: true,
		CanPostMessage:    true,
		CanArchiveGroup:   true,
	}
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Meta     struct {
		Code   int      `json:"code"`
		Errors []string `json:"errors"`
	} `json:"meta"`
}

type groupResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ShareURL string `json:"share_url"`
}

type botEnvelope struct {
	Bot struct {
		BotID string `json:"bot_id"`
	} `json:"bot"`
}

func (c *Client) CreateGroup(ctx context.Context, params platforms.CreateGroupParams) (*platforms.Group, error) {
	body := map[string]any{
		"name":        params.Name,
		"description": params.Description,
		"share":       true,
	}

	raw, err := c.post(ctx, "/groups", body)
	if err != nil {
		return nil, models.NewPlatformError(models.PlatformGroupMe, "create group", err)
	}

	var group groupResponse
	if err := json.Unmarshal(raw, &group); err != nil {
		return nil, models.NewPlatformError(models.PlatformGroupMe, "create group", err)
	}

	return &platforms.Group{
		ID:       group.ID,
		Name:     group.Name,
		ShareURL: group.ShareURL,
	}, nil
}

func (c *Client) CreateBot(ctx context.Context, groupID, callbackURL string) (*platforms.Bot, error) {
	body := map[string]any{
		"bot": map[string]any{
			"name":         "Event Chat",
			"group_id":     groupID,
			"callback_url": callbackURL,
		},
	}

	raw, err := c.post(ctx, "/bots", body)
	if err != nil {
		return nil, models.NewPlatformError(models.PlatformGroupMe, "create bot", err)
	}

	var bot botEnvelope
	if err := json.Unmarshal(raw, &bot); err != nil {
		return nil, models.NewPlatformError(models.PlatformGroupMe, "create bot", err)
	}
	return &platforms.Bot{ID: bot.Bot.BotID}, nil
}

func (c *Client) PostMessage(ctx context.Context, params platforms.PostParams) error {
	if params.BotID == "" {
		return models.NewPlatformError(models.PlatformGroupMe, "post message", fmt.Errorf("mapping has no bot id"))
	}
	body := map[string]any{
		"bot_id": params.BotID,
		"text":   params.Text,
	}
	if _, err := c.post(ctx, "/bots/post", body); err != nil {
		return models.NewPlatformError(models.PlatformGroupMe, "post message", err)
	}
	return nil
}

func (c *Client) DestroyBot(ctx context.Context, botID string) error {
	body := map[string]any{"bot_id": botID}
	if _, err := c.post(ctx, "/bots/destroy", body); err != nil {
		return models.NewPlatformError(models.PlatformGroupMe, "destroy bot", err)
	}
	return nil
}

func (c *Client) ArchiveGroup(ctx context.Context, groupID string) error {
	if _, err := c.post(ctx, fmt.Sprintf("/groups/%s/destroy", groupID), nil); err != nil {
		return models.NewPlatformError(models.PlatformGroupMe, "archive group", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	var env envelope
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetResult(&env).
		SetError(&env)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("groupme API status %d: %v", resp.StatusCode(), env.Meta.Errors)
	}
	return env.Response, nil
}
