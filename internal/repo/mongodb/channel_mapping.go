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

// UpsertReferenceParams carries a conversation-reference registration from
// the bot bridge. The upsert key is (platform, conversation id).
type UpsertReferenceParams struct {
	Platform                  models.Platform
	ConversationID            string
	ConversationReferenceJSON string
	TenantID                  string
	InstalledByName           string
	IsEmulator                bool
}

type ChannelMappingRepository interface {
	Create(ctx context.Context, mapping *models.ExternalChannelMapping) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ExternalChannelMapping, error)
	ListActiveByEvent(ctx context.Context, eventID string) ([]*models.ExternalChannelMapping, error)
	ListAll(ctx context.Context) ([]*models.ExternalChannelMapping, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	Reactivate(ctx context.Context, id primitive.ObjectID) error
	Rename(ctx context.Context, id primitive.ObjectID, name string) error
	// UpsertConversationReference always overwrites the stored reference
	// and last-activity time; the platform's routing endpoint can rotate,
	// so the reference is never treated as set-once.
	UpsertConversationReference(ctx context.Context, params UpsertReferenceParams) (*models.ExternalChannelMapping, error)
	TouchActivity(ctx context.Context, id primitive.ObjectID, referenceJSON string) error
	// ListInactiveSince returns active mappings with no inbound activity
	// since the cutoff; emulator mappings match regardless of activity.
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.ExternalChannelMapping, error)
}

type channelMappingRepo struct {
	collection *mongo.Collection
}

func NewChannelMappingRepository(db *DB) ChannelMappingRepository {
	repo := &channelMappingRepo{
		collection: db.Database.Collection("external_channel_mappings"),
	}
	go repo.createIndexes(context.Background())
	return repo
}

func (r *channelMappingRepo) createIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "platform", Value: 1},
				{Key: "external_group_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("platform_group"),
		},
		{
			Keys: bson.D{
				{Key: "event_id", Value: 1},
				{Key: "is_active", Value: 1},
			},
			Options: options.Index().SetName("event_active"),
		},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Errorw(ctx, "failed to create channel mapping indexes", "error", err)
	}
}

func (r *channelMappingRepo) Create(ctx context.Context, mapping *models.ExternalChannelMapping) error {
	now := time.Now()
	if mapping.ID.IsZero() {
		mapping.ID = primitive.NewObjectID()
	}
	mapping.CreatedAt = now
	mapping.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, mapping); err != nil {
		return fmt.Errorf("create channel mapping: %w", err)
	}
	return nil
}

func (r *channelMappingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ExternalChannelMapping, error) {
	var mapping models.ExternalChannelMapping
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&mapping)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel mapping: %w", err)
	}
	return &mapping, nil
}

func (r *channelMappingRepo) ListActiveByEvent(ctx context.Context, eventID string) ([]*models.ExternalChannelMapping, error) {
	filter := bson.M{
		"event_id":  eventID,
		"is_active": true,
	}
	return r.list(ctx, filter)
}

func (r *channelMappingRepo) ListAll(ctx context.Context) ([]*models.ExternalChannelMapping, error) {
	return r.list(ctx, bson.M{})
}

func (r *channelMappingRepo) list(ctx context.Context, filter bson.M) ([]*models.ExternalChannelMapping, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list channel mappings: %w", err)
	}
	defer cursor.Close(ctx)

	var mappings []*models.ExternalChannelMapping
	for cursor.Next(ctx) {
		var mapping models.ExternalChannelMapping
		if err := cursor.Decode(&mapping); err != nil {
			return nil, fmt.Errorf("decode channel mapping: %w", err)
		}
		mappings = append(mappings, &mapping)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return mappings, nil
}

func (r *channelMappingRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.setActive(ctx, id, false)
}

func (r *channelMappingRepo) Reactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.setActive(ctx, id, true)
}

func (r *channelMappingRepo) setActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	update := bson.M{
		"$set": bson.M{
			"is_active":  active,
			"updated_at": time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("set mapping active=%t: %w", active, err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *channelMappingRepo) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	update := bson.M{
		"$set": bson.M{
			"external_group_name": name,
			"updated_at":          time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("rename mapping: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *channelMappingRepo) UpsertConversationReference(ctx context.Context, params UpsertReferenceParams) (*models.ExternalChannelMapping, error) {
	now := time.Now()
	filter := bson.M{
		"platform":          params.Platform,
		"external_group_id": params.ConversationID,
	}
	update := bson.M{
		"$set": bson.M{
			"conversation_reference_json": params.ConversationReferenceJSON,
			"last_activity_at":            now,
			"updated_at":                  now,
		},
		"$setOnInsert": bson.M{
			"platform":          params.Platform,
			"external_group_id": params.ConversationID,
			"tenant_id":         params.TenantID,
			"installed_by_name": params.InstalledByName,
			"is_emulator":       params.IsEmulator,
			"is_active":         true,
			"created_at":        now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var mapping models.ExternalChannelMapping
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mapping); err != nil {
		return nil, fmt.Errorf("upsert conversation reference: %w", err)
	}
	return &mapping, nil
}

func (r *channelMappingRepo) TouchActivity(ctx context.Context, id primitive.ObjectID, referenceJSON string) error {
	now := time.Now()
	set := bson.M{
		"last_activity_at": now,
		"updated_at":       now,
	}
	if referenceJSON != "" {
		set["conversation_reference_json"] = referenceJSON
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("touch mapping activity: %w", err)
	}
	return nil
}

func (r *channelMappingRepo) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.ExternalChannelMapping, error) {
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"is_emulator": true},
			{"last_activity_at": bson.M{"$lt": cutoff}},
			{"last_activity_at": bson.M{"$exists": false}, "created_at": bson.M{"$lt": cutoff}},
		},
	}
	return r.list(ctx, filter)
}
