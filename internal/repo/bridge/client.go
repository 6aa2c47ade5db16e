package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/incidentkit/chat-bridge/internal/config"
)

// Client calls the stateless bot bridge. Every send carries the serialized
// conversation reference read fresh from the mapping store; the bridge
// never performs its own lookup, which is what lets any number of bridge
// instances serve sends interchangeably.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type SendRequest struct {
	ConversationReferenceJSON string `json:"conversationReferenceJson"`
	Message                   string `json:"message"`
	SenderName                string `json:"senderName"`
}

type SendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewClient(conf *config.Config) *Client {
	return &Client{
		baseURL: conf.Bridge.BaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Send delivers one message into a platform conversation through the
// bridge's /internal/send endpoint.
func (c *Client) Send(ctx context.Context, req SendRequest) error {
	if req.ConversationReferenceJSON == "" {
		return fmt.Errorf("conversation reference is required")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/send", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call bridge: %w", err)
	}
	defer resp.Body.Close()

	var sendResp SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
		return fmt.Errorf("decode bridge response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !sendResp.Success {
		return fmt.Errorf("bridge delivery failed (status %d): %s", resp.StatusCode, sendResp.Error)
	}
	return nil
}
