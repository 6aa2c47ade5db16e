package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/incidentkit/chat-bridge/internal/config"
)

// Client posts events to the realtime hub, which pushes them to connected
// internal clients. The hub's transport is its own concern; this service
// only hands it scoped events.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Event struct {
	EventID string `json:"event_id"`
	Name    string `json:"name"`
	Data    any    `json:"data"`
}

type sendEventsRequest struct {
	Events []Event `json:"events"`
}

func NewClient(conf *config.Config) *Client {
	return &Client{
		baseURL: conf.Hub.BaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) SendEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	body, err := json.Marshal(sendEventsRequest{Events: events})
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/events", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("hub returned status %d", resp.StatusCode)
	}
	return nil
}
