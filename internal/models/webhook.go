package models

import "time"

// Sender types reported by GroupMe-style callback payloads. Bot senders are
// discarded to prevent echo loops from our own outbound posts.
const (
	SenderTypeUser = "user"
	SenderTypeBot  = "bot"
)

// WebhookAttachment is one attachment entry in an inbound callback payload.
type WebhookAttachment struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// WebhookPayload is the normalized inbound callback payload for
// GroupMe-style platforms.
type WebhookPayload struct {
	GroupID     string              `json:"group_id" validate:"required"`
	MessageID   string              `json:"id" validate:"required"`
	SenderType  string              `json:"sender_type"`
	SenderName  string              `json:"name"`
	UserID      string              `json:"user_id"`
	Text        string              `json:"text"`
	Attachments []WebhookAttachment `json:"attachments"`
	CreatedAt   int64               `json:"created_at"`
}

// FirstImageURL returns the first image-type attachment URL, if any, used
// as the message's display attachment.
func (p *WebhookPayload) FirstImageURL() string {
	for _, a := range p.Attachments {
		if a.Type == "image" && a.URL != "" {
			return a.URL
		}
	}
	return ""
}

// Timestamp converts the payload's unix creation time, falling back to now
// for payloads that omit it.
func (p *WebhookPayload) Timestamp() time.Time {
	if p.CreatedAt > 0 {
		return time.Unix(p.CreatedAt, 0)
	}
	return time.Now()
}
