package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/incidentkit/chat-bridge/internal/models"
)

type ChatMessageRepository interface {
	// Create inserts a message. For external messages the unique index on
	// (external_source, external_message_id) is the dedup barrier: a
	// duplicate-key conflict is returned as models.ErrDuplicateMessage so
	// redelivered webhooks are discarded without a racy pre-check.
	Create(ctx context.Context, message *models.ChatMessage) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatMessage, error)
	GetByExternalID(ctx context.Context, platform models.Platform, externalMessageID string) (*models.ChatMessage, error)
	ListThreadMessages(ctx context.Context, threadID primitive.ObjectID, limit int, before *primitive.ObjectID) ([]*models.ChatMessage, error)
	// SetPromotion sets all three promotion fields in one update; the
	// message is never left partially promoted.
	SetPromotion(ctx context.Context, messageID, entryID primitive.ObjectID, promotedByID string, promotedAt time.Time) error
}

type chatMessageRepo struct {
	collection *mongo.Collection
}

func NewChatMessageRepository(db *DB) ChatMessageRepository {
	repo := &chatMessageRepo{
		collection: db.Database.Collection("chat_messages"),
	}
	go repo.createIndexes(context.Background())
	return repo
}

func (r *chatMessageRepo) createIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "external_source", Value: 1},
				{Key: "external_message_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"external_message_id": bson.M{"$exists": true},
				}).
				SetName("external_source_message"),
		},
		{
			Keys: bson.D{
				{Key: "thread_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("thread_recent"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Errorw(ctx, "failed to create chat message indexes", "error", err)
	}
}

func (r *chatMessageRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	now := time.Now()
	message.ID = primitive.NewObjectID()
	message.CreatedAt = now
	message.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, message)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateMessage
	}
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (r *chatMessageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatMessage, error) {
	var message models.ChatMessage
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &message, nil
}

func (r *chatMessageRepo) GetByExternalID(ctx context.Context, platform models.Platform, externalMessageID string) (*models.ChatMessage, error) {
	filter := bson.M{
		"external_source":     platform,
		"external_message_id": externalMessageID,
	}
	var message models.ChatMessage
	err := r.collection.FindOne(ctx, filter).Decode(&message)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message by external id: %w", err)
	}
	return &message, nil
}

func (r *chatMessageRepo) ListThreadMessages(ctx context.Context, threadID primitive.ObjectID, limit int, before *primitive.ObjectID) ([]*models.ChatMessage, error) {
	filter := bson.M{"thread_id": threadID}
	if before != nil {
		filter["_id"] = bson.M{"$lt": *before}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list thread messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*models.ChatMessage
	for cursor.Next(ctx) {
		var message models.ChatMessage
		if err := cursor.Decode(&message); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, &message)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return messages, nil
}

func (r *chatMessageRepo) SetPromotion(ctx context.Context, messageID, entryID primitive.ObjectID, promotedByID string, promotedAt time.Time) error {
	filter := bson.M{
		"_id":                          messageID,
		"promoted_to_logbook_entry_id": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"promoted_to_logbook_entry_id": entryID,
			"promoted_to_logbook_at":       promotedAt,
			"promoted_to_logbook_by_id":    promotedByID,
			"updated_at":                   time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("set promotion: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
