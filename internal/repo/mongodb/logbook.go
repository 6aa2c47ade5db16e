package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/incidentkit/chat-bridge/internal/models"
)

type LogbookRepository interface {
	Create(ctx context.Context, entry *models.LogbookEntry) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.LogbookEntry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type logbookRepo struct {
	collection *mongo.Collection
}

func NewLogbookRepository(db *DB) LogbookRepository {
	return &logbookRepo{
		collection: db.Database.Collection("logbook_entries"),
	}
}

func (r *logbookRepo) Create(ctx context.Context, entry *models.LogbookEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("create logbook entry: %w", err)
	}
	return nil
}

func (r *logbookRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete logbook entry: %w", err)
	}
	return nil
}

func (r *logbookRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.LogbookEntry, error) {
	var entry models.LogbookEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get logbook entry: %w", err)
	}
	return &entry, nil
}
