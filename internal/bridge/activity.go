package bridge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChannelAccount identifies one party of a conversation on the connector
// side, in Bot Framework shape.
type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ConversationAccount struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId,omitempty"`
}

// Activity is the inbound connector payload. Only the fields the bridge
// routes on are modeled; everything else is ignored on decode.
type Activity struct {
	Type         string              `json:"type"`
	ID           string              `json:"id"`
	Timestamp    string              `json:"timestamp,omitempty"`
	ServiceURL   string              `json:"serviceUrl"`
	ChannelID    string              `json:"channelId"`
	From         ChannelAccount      `json:"from"`
	Recipient    ChannelAccount      `json:"recipient"`
	Conversation ConversationAccount `json:"conversation"`
	Text         string              `json:"text,omitempty"`
}

const ActivityTypeMessage = "message"

// ConversationReference is the serialized routing token. It carries
// everything needed to address the conversation later, so the bridge holds
// no state between the inbound activity and any future send.
type ConversationReference struct {
	ActivityID   string              `json:"activityId,omitempty"`
	Bot          ChannelAccount      `json:"bot"`
	User         ChannelAccount      `json:"user"`
	Conversation ConversationAccount `json:"conversation"`
	ChannelID    string              `json:"channelId"`
	ServiceURL   string              `json:"serviceUrl"`
}

// ReferenceFromActivity captures the routing token of an inbound activity.
// The activity's recipient is our bot.
func ReferenceFromActivity(a Activity) ConversationReference {
	return ConversationReference{
		ActivityID:   a.ID,
		Bot:          a.Recipient,
		User:         a.From,
		Conversation: a.Conversation,
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
	}
}

// ParseReference decodes a serialized conversation reference and rejects
// tokens that cannot address a conversation.
func ParseReference(raw string) (*ConversationReference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("conversation reference is empty")
	}
	var ref ConversationReference
	if err := json.Unmarshal([]byte(raw), &ref); err != nil {
		return nil, fmt.Errorf("malformed conversation reference: %w", err)
	}
	if ref.Conversation.ID == "" {
		return nil, fmt.Errorf("conversation reference has no conversation id")
	}
	return &ref, nil
}

// StripMention removes a leading @-mention of the bot from message text so
// "@incident-bot status update" forwards as "status update".
func StripMention(text, botName string) string {
	text = strings.TrimSpace(text)
	if botName == "" {
		return text
	}
	for _, prefix := range []string{"@" + botName, botName} {
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return text
}
