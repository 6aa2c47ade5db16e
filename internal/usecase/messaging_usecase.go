package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/incidentkit/chat-bridge/internal/config"
	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/repo/mongodb"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms"
	"github.com/incidentkit/chat-bridge/pkg/secrets"
)

type CreateChannelParams struct {
	EventID    string
	Platform   models.Platform
	CustomName string
}

type ConversationReferenceParams struct {
	Platform                  models.Platform
	ConversationID            string
	ConversationReferenceJSON string
	ChannelID                 string
	TenantID                  string
	InstalledByName           string
}

type MessagingUsecase interface {
	CreateChannel(ctx context.Context, actor models.Actor, params CreateChannelParams) (*models.ExternalChannelMapping, error)
	ListMappings(ctx context.Context, eventID string) ([]*models.ExternalChannelMapping, error)
	Deactivate(ctx context.Context, mappingID primitive.ObjectID, archiveExternal bool) error

	ProcessWebhook(ctx context.Context, platform models.Platform, mappingID primitive.ObjectID, secret string, payload models.WebhookPayload) error
	UpsertConversationReference(ctx context.Context, params ConversationReferenceParams) (*models.ExternalChannelMapping, error)

	ListConnectors(ctx context.Context) ([]*models.ExternalChannelMapping, error)
	RenameConnector(ctx context.Context, mappingID primitive.ObjectID, name string) error
	ReactivateConnector(ctx context.Context, mappingID primitive.ObjectID) error
	CleanupStaleConnectors(ctx context.Context, inactiveDays int) (int, error)
}

type messagingUsecase struct {
	conf        *config.Config
	mappingRepo mongodb.ChannelMappingRepository
	threadRepo  mongodb.ChatThreadRepository
	messageRepo mongodb.ChatMessageRepository
	registry    *platforms.Registry
	hub         HubBroadcaster
}

func NewMessagingUsecase(
	conf *config.Config,
	mappingRepo mongodb.ChannelMappingRepository,
	threadRepo mongodb.ChatThreadRepository,
	messageRepo mongodb.ChatMessageRepository,
	registry *platforms.Registry,
	hub HubBroadcaster,
) MessagingUsecase {
	return &messagingUsecase{
		conf:        conf,
		mappingRepo: mappingRepo,
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		registry:    registry,
		hub:         hub,
	}
}

func (uc *messagingUsecase) CreateChannel(ctx context.Context, actor models.Actor, params CreateChannelParams) (*models.ExternalChannelMapping, error) {
	// Capability check happens before any network or database effect.
	client, err := uc.registry.GetProvisioner(params.Platform)
	if err != nil {
		return nil, err
	}

	// The default thread must exist before the first webhook arrives.
	thread, err := uc.threadRepo.EnsureDefaultThread(ctx, params.EventID)
	if err != nil {
		return nil, fmt.Errorf("ensure default thread: %w", err)
	}

	groupName := strings.TrimSpace(params.CustomName)
	if groupName == "" {
		groupName = fmt.Sprintf("%s (%s)", thread.Name, params.EventID)
	}

	secret, err := secrets.NewWebhookSecret()
	if err != nil {
		return nil, err
	}

	// The mapping id is part of the callback URL, so it is minted before
	// provisioning and persisted afterwards.
	mappingID := primitive.NewObjectID()

	group, err := client.CreateGroup(ctx, platforms.CreateGroupParams{
		Name:          groupName,
		Description:   "Linked event chat",
		WebhookSecret: secret,
		MappingID:     mappingID.Hex(),
	})
	if err != nil {
		return nil, err
	}

	callbackURL := fmt.Sprintf("%s/webhooks/%s/%s?token=%s",
		uc.conf.GroupMe.CallbackBaseURL, params.Platform, mappingID.Hex(), secret)

	bot, err := client.CreateBot(ctx, group.ID, callbackURL)
	if err != nil {
		// No mapping row is written when provisioning fails; the group is
		// torn down so nothing external dangles either.
		if archiveErr := client.ArchiveGroup(ctx, group.ID); archiveErr != nil {
			log.Warnw(ctx, "failed to archive group after bot provisioning failure",
				"platform", params.Platform,
				"group_id", group.ID,
				"error", archiveErr)
		}
		return nil, err
	}

	mapping := &models.ExternalChannelMapping{
		ID:                mappingID,
		EventID:           params.EventID,
		Platform:          params.Platform,
		ExternalGroupID:   group.ID,
		ExternalGroupName: group.Name,
		BotID:             bot.ID,
		WebhookSecret:     secret,
		ShareURL:          group.ShareURL,
		IsActive:          true,
		TenantID:          actor.TenantID,
		InstalledByName:   actor.DisplayName,
	}
	if err := uc.mappingRepo.Create(ctx, mapping); err != nil {
		return nil, err
	}

	log.Infow(ctx, "external channel created",
		"event_id", params.EventID,
		"platform", params.Platform,
		"mapping_id", mapping.ID.Hex(),
		"group_id", group.ID)
	return mapping, nil
}

func (uc *messagingUsecase) ListMappings(ctx context.Context, eventID string) ([]*models.ExternalChannelMapping, error) {
	return uc.mappingRepo.ListActiveByEvent(ctx, eventID)
}

func (uc *messagingUsecase) Deactivate(ctx context.Context, mappingID primitive.ObjectID, archiveExternal bool) error {
	mapping, err := uc.mappingRepo.GetByID(ctx, mappingID)
	if err != nil {
		return err
	}

	if err := uc.mappingRepo.Deactivate(ctx, mappingID); err != nil {
		return err
	}

	if archiveExternal {
		// Best-effort: external teardown failures never undo the local
		// deactivation.
		client, err := uc.registry.Get(mapping.Platform)
		if err != nil {
			log.Warnw(ctx, "cannot archive external group", "platform", mapping.Platform, "error", err)
			return nil
		}
		if mapping.BotID != "" {
			if err := client.DestroyBot(ctx, mapping.BotID); err != nil {
				log.Warnw(ctx, "failed to destroy bot", "mapping_id", mappingID.Hex(), "error", err)
			}
		}
		if err := client.ArchiveGroup(ctx, mapping.ExternalGroupID); err != nil {
			log.Warnw(ctx, "failed to archive group", "mapping_id", mappingID.Hex(), "error", err)
		}
	}
	return nil
}

// ProcessWebhook runs the inbound pipeline. All expected discard
// conditions return nil so the webhook transport never sees an error for
// them; only unexpected failures surface.
func (uc *messagingUsecase) ProcessWebhook(ctx context.Context, platform models.Platform, mappingID primitive.ObjectID, secret string, payload models.WebhookPayload) error {
	// Loop prevention: our own bot's posts come back through the webhook.
	if payload.SenderType == models.SenderTypeBot {
		log.Debugw(ctx, "discarding bot echo", "mapping_id", mappingID.Hex(), "message_id", payload.MessageID)
		return nil
	}

	mapping, err := uc.mappingRepo.GetByID(ctx, mappingID)
	if errors.Is(err, models.ErrNotFound) {
		log.Infow(ctx, "discarding webhook for unknown mapping", "mapping_id", mappingID.Hex())
		return nil
	}
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}
	if !mapping.IsActive {
		log.Infow(ctx, "discarding webhook for inactive mapping", "mapping_id", mappingID.Hex())
		return nil
	}
	// Bridge-attached conversations exist before they are linked to an
	// event; their traffic has nowhere to land yet.
	if mapping.EventID == "" {
		log.Infow(ctx, "discarding webhook for unlinked mapping", "mapping_id", mappingID.Hex())
		return nil
	}
	if mapping.WebhookSecret != "" && secret != mapping.WebhookSecret {
		log.Warnw(ctx, "discarding webhook with bad secret", "mapping_id", mappingID.Hex())
		return nil
	}

	// The route's platform must be the mapping's platform; one platform's
	// URL cannot be replayed against another platform's mapping.
	if platform != mapping.Platform {
		log.Warnw(ctx, "discarding webhook with mismatched platform",
			"mapping_id", mappingID.Hex(),
			"route_platform", platform,
			"mapping_platform", mapping.Platform)
		return nil
	}

	// A stale or misrouted webhook registration can deliver another
	// group's traffic to this mapping.
	if payload.GroupID != mapping.ExternalGroupID {
		log.Warnw(ctx, "discarding webhook with mismatched group",
			"mapping_id", mappingID.Hex(),
			"payload_group_id", payload.GroupID,
			"mapping_group_id", mapping.ExternalGroupID)
		return nil
	}

	if err := uc.mappingRepo.TouchActivity(ctx, mappingID, ""); err != nil {
		log.Warnw(ctx, "failed to refresh mapping activity", "mapping_id", mappingID.Hex(), "error", err)
	}

	thread, err := uc.threadRepo.EnsureDefaultThread(ctx, mapping.EventID)
	if err != nil {
		return fmt.Errorf("resolve default thread: %w", err)
	}

	ts := payload.Timestamp()
	message := &models.ChatMessage{
		ThreadID:                 thread.ID,
		EventID:                  mapping.EventID,
		Text:                     payload.Text,
		CreatedByID:              models.SystemActor.UserID,
		CreatedByName:            models.SystemActor.DisplayName,
		ExternalSource:           mapping.Platform,
		ExternalMessageID:        payload.MessageID,
		ExternalSenderName:       payload.SenderName,
		ExternalSenderID:         payload.UserID,
		ExternalTimestamp:        &ts,
		ExternalAttachmentURL:    payload.FirstImageURL(),
		ExternalChannelMappingID: &mappingID,
	}

	// The unique index on (source, external message id) is the dedup
	// barrier; redelivery surfaces as a duplicate insert, not a pre-check.
	err = uc.messageRepo.Create(ctx, message)
	if errors.Is(err, models.ErrDuplicateMessage) {
		log.Debugw(ctx, "discarding redelivered webhook",
			"mapping_id", mappingID.Hex(),
			"external_message_id", payload.MessageID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist external message: %w", err)
	}

	uc.hub.BroadcastMessageCreated(ctx, mapping.EventID, message)
	return nil
}

func (uc *messagingUsecase) UpsertConversationReference(ctx context.Context, params ConversationReferenceParams) (*models.ExternalChannelMapping, error) {
	if params.ConversationID == "" || params.ConversationReferenceJSON == "" {
		return nil, fmt.Errorf("conversation id and reference are required")
	}
	platform := params.Platform
	if platform == "" {
		platform = models.PlatformTeams
	}

	mapping, err := uc.mappingRepo.UpsertConversationReference(ctx, mongodb.UpsertReferenceParams{
		Platform:                  platform,
		ConversationID:            params.ConversationID,
		ConversationReferenceJSON: params.ConversationReferenceJSON,
		TenantID:                  params.TenantID,
		InstalledByName:           params.InstalledByName,
		IsEmulator:                isEmulatorChannel(params.ChannelID),
	})
	if err != nil {
		return nil, err
	}

	log.Debugw(ctx, "conversation reference refreshed",
		"platform", platform,
		"conversation_id", params.ConversationID,
		"mapping_id", mapping.ID.Hex())
	return mapping, nil
}

// isEmulatorChannel tags test/dev connections at creation time so they can
// be bulk-excluded and bulk-cleaned without manual curation.
func isEmulatorChannel(channelID string) bool {
	return strings.EqualFold(channelID, "emulator")
}

func (uc *messagingUsecase) ListConnectors(ctx context.Context) ([]*models.ExternalChannelMapping, error) {
	return uc.mappingRepo.ListAll(ctx)
}

func (uc *messagingUsecase) RenameConnector(ctx context.Context, mappingID primitive.ObjectID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("connector name cannot be empty")
	}
	return uc.mappingRepo.Rename(ctx, mappingID, name)
}

func (uc *messagingUsecase) ReactivateConnector(ctx context.Context, mappingID primitive.ObjectID) error {
	return uc.mappingRepo.Reactivate(ctx, mappingID)
}

func (uc *messagingUsecase) CleanupStaleConnectors(ctx context.Context, inactiveDays int) (int, error) {
	if inactiveDays <= 0 {
		inactiveDays = uc.conf.Cleanup.InactiveDays
	}
	cutoff := time.Now().AddDate(0, 0, -inactiveDays)

	stale, err := uc.mappingRepo.ListInactiveSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, mapping := range stale {
		if err := uc.mappingRepo.Deactivate(ctx, mapping.ID); err != nil {
			log.Warnw(ctx, "failed to deactivate stale connector",
				"mapping_id", mapping.ID.Hex(),
				"error", err)
			continue
		}
		cleaned++
	}

	log.Infow(ctx, "stale connector cleanup finished",
		"inactive_days", inactiveDays,
		"candidates", len(stale),
		"cleaned", cleaned)
	return cleaned, nil
}
