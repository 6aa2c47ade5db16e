package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatThread is one event-scoped conversation. Exactly one thread per event
// carries IsDefaultEventThread, enforced by a unique partial index.
type ChatThread struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID              string             `bson:"event_id" json:"event_id" validate:"required"`
	Name                 string             `bson:"name" json:"name"`
	IsDefaultEventThread bool               `bson:"is_default_event_thread" json:"is_default_event_thread"`
	CreatedAt            time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time          `bson:"updated_at" json:"updated_at"`
}
