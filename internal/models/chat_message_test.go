package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAttributionName(t *testing.T) {
	tests := []struct {
		name     string
		message  ChatMessage
		expected string
	}{
		{
			name: "internal message uses creator name",
			message: ChatMessage{
				CreatedByID:   "u-1",
				CreatedByName: "Jordan",
			},
			expected: "Jordan",
		},
		{
			name: "external groupme message",
			message: ChatMessage{
				ExternalSource:     PlatformGroupMe,
				ExternalMessageID:  "gm-1",
				ExternalSenderName: "Mike",
			},
			expected: "Mike (via GroupMe)",
		},
		{
			name: "external teams message",
			message: ChatMessage{
				ExternalSource:     PlatformTeams,
				ExternalMessageID:  "t-1",
				ExternalSenderName: "Priya",
			},
			expected: "Priya (via Teams)",
		},
		{
			name: "external source without message id is internal",
			message: ChatMessage{
				ExternalSource: PlatformGroupMe,
				CreatedByName:  "Jordan",
			},
			expected: "Jordan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.message.AttributionName())
		})
	}
}

func TestIsPromoted(t *testing.T) {
	var message ChatMessage
	assert.False(t, message.IsPromoted())

	entryID := primitive.NewObjectID()
	now := time.Now()
	message.PromotedToLogbookEntryID = &entryID
	message.PromotedToLogbookAt = &now
	assert.True(t, message.IsPromoted())
}
