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

type ChatThreadRepository interface {
	// EnsureDefaultThread finds or creates the event's default thread.
	// Concurrent callers collapse to a single thread: the upsert filter
	// plus the unique partial index make the create idempotent.
	EnsureDefaultThread(ctx context.Context, eventID string) (*models.ChatThread, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatThread, error)
	GetDefaultThread(ctx context.Context, eventID string) (*models.ChatThread, error)
}

type chatThreadRepo struct {
	collection *mongo.Collection
}

func NewChatThreadRepository(db *DB) ChatThreadRepository {
	repo := &chatThreadRepo{
		collection: db.Database.Collection("chat_threads"),
	}
	go repo.createIndexes(context.Background())
	return repo
}

func (r *chatThreadRepo) createIndexes(ctx context.Context) {
	defaultThreadIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "event_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"is_default_event_thread": true}).
			SetName("event_default_thread"),
	}

	if _, err := r.collection.Indexes().CreateOne(ctx, defaultThreadIndex); err != nil {
		log.Errorw(ctx, "failed to create chat thread indexes", "error", err)
	}
}

func (r *chatThreadRepo) EnsureDefaultThread(ctx context.Context, eventID string) (*models.ChatThread, error) {
	now := time.Now()
	filter := bson.M{
		"event_id":                eventID,
		"is_default_event_thread": true,
	}
	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"event_id":                eventID,
			"name":                    "Event Chat",
			"is_default_event_thread": true,
			"created_at":              now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var thread models.ChatThread
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&thread)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the race to another creator; the winner's thread is there.
		return r.GetDefaultThread(ctx, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("ensure default thread: %w", err)
	}
	return &thread, nil
}

func (r *chatThreadRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatThread, error) {
	var thread models.ChatThread
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&thread)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return &thread, nil
}

func (r *chatThreadRepo) GetDefaultThread(ctx context.Context, eventID string) (*models.ChatThread, error) {
	filter := bson.M{
		"event_id":                eventID,
		"is_default_event_thread": true,
	}
	var thread models.ChatThread
	err := r.collection.FindOne(ctx, filter).Decode(&thread)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default thread: %w", err)
	}
	return &thread, nil
}
