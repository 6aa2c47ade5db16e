package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid reference",
			raw:  `{"conversation":{"id":"conv-1"},"serviceUrl":"https://smba.example.com"}`,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{"conversation":`,
			wantErr: true,
		},
		{
			name:    "no conversation id",
			raw:     `{"serviceUrl":"https://smba.example.com"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseReference(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "conv-1", ref.Conversation.ID)
		})
	}
}

func TestReferenceFromActivity(t *testing.T) {
	activity := Activity{
		Type:         ActivityTypeMessage,
		ID:           "act-1",
		ServiceURL:   "https://smba.example.com",
		ChannelID:    "msteams",
		From:         ChannelAccount{ID: "user-1", Name: "Jordan"},
		Recipient:    ChannelAccount{ID: "bot-1", Name: "incident-bot"},
		Conversation: ConversationAccount{ID: "conv-1", TenantID: "tenant-1"},
	}

	ref := ReferenceFromActivity(activity)
	assert.Equal(t, "act-1", ref.ActivityID)
	assert.Equal(t, "bot-1", ref.Bot.ID, "the recipient of an inbound activity is our bot")
	assert.Equal(t, "user-1", ref.User.ID)
	assert.Equal(t, "conv-1", ref.Conversation.ID)
	assert.Equal(t, "https://smba.example.com", ref.ServiceURL)
}

func TestStripMention(t *testing.T) {
	tests := []struct {
		text string
		bot  string
		want string
	}{
		{"@incident-bot status update", "incident-bot", "status update"},
		{"incident-bot status update", "incident-bot", "status update"},
		{"status update", "incident-bot", "status update"},
		{"  status update  ", "", "status update"},
		{"@incident-bot", "incident-bot", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripMention(tt.text, tt.bot))
	}
}
