package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LogbookEntry is the durable incident-log record a chat message can be
// promoted into.
type LogbookEntry struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID       string             `bson:"event_id" json:"event_id" validate:"required"`
	Content       string             `bson:"content" json:"content" validate:"required"`
	Category      string             `bson:"category,omitempty" json:"category,omitempty"`
	CreatedByID   string             `bson:"created_by_id" json:"created_by_id"`
	CreatedByName string             `bson:"created_by_name" json:"created_by_name"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
