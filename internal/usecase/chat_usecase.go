package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/repo/mongodb"
)

type CreateMessageParams struct {
	ThreadID primitive.ObjectID
	Text     string
}

type PromoteParams struct {
	Notes    string
	Category string
}

type ChatUsecase interface {
	// EnsureThreadExists is the idempotent find-or-create of the event's
	// default thread; concurrent callers collapse to a single thread.
	EnsureThreadExists(ctx context.Context, eventID string) (*models.ChatThread, error)
	CreateMessage(ctx context.Context, actor models.Actor, params CreateMessageParams) (*models.ChatMessage, error)
	GetThreadMessages(ctx context.Context, threadID primitive.ObjectID, limit int, before *primitive.ObjectID) ([]*models.ChatMessage, error)
	PromoteToLogbook(ctx context.Context, actor models.Actor, messageID primitive.ObjectID, params PromoteParams) (*models.LogbookEntry, error)
}

type chatUsecase struct {
	threadRepo  mongodb.ChatThreadRepository
	messageRepo mongodb.ChatMessageRepository
	logbookRepo mongodb.LogbookRepository
	hub         HubBroadcaster
	fanout      ExternalFanout
}

func NewChatUsecase(
	threadRepo mongodb.ChatThreadRepository,
	messageRepo mongodb.ChatMessageRepository,
	logbookRepo mongodb.LogbookRepository,
	hub HubBroadcaster,
	fanout ExternalFanout,
) ChatUsecase {
	return &chatUsecase{
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		logbookRepo: logbookRepo,
		hub:         hub,
		fanout:      fanout,
	}
}

func (uc *chatUsecase) EnsureThreadExists(ctx context.Context, eventID string) (*models.ChatThread, error) {
	return uc.threadRepo.EnsureDefaultThread(ctx, eventID)
}

func (uc *chatUsecase) CreateMessage(ctx context.Context, actor models.Actor, params CreateMessageParams) (*models.ChatMessage, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return nil, fmt.Errorf("message text is required")
	}

	thread, err := uc.threadRepo.GetByID(ctx, params.ThreadID)
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		ThreadID:      thread.ID,
		EventID:       thread.EventID,
		Text:          text,
		CreatedByID:   actor.UserID,
		CreatedByName: actor.DisplayName,
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	uc.hub.BroadcastMessageCreated(ctx, thread.EventID, message)

	// External fan-out is decoupled from the caller's outcome: a platform
	// outage never prevents the internal message from being saved or shown.
	uc.fanout.Broadcast(thread.EventID, actor.DisplayName, text)

	return message, nil
}

func (uc *chatUsecase) GetThreadMessages(ctx context.Context, threadID primitive.ObjectID, limit int, before *primitive.ObjectID) ([]*models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.messageRepo.ListThreadMessages(ctx, threadID, limit, before)
}

func (uc *chatUsecase) PromoteToLogbook(ctx context.Context, actor models.Actor, messageID primitive.ObjectID, params PromoteParams) (*models.LogbookEntry, error) {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.IsPromoted() {
		return nil, models.ErrAlreadyPromoted
	}

	content := fmt.Sprintf("[From Chat - %s]\n%s", message.AttributionName(), message.Text)
	if notes := strings.TrimSpace(params.Notes); notes != "" {
		content += fmt.Sprintf("\n\n[Additional Notes]\n%s", notes)
	}

	entry := &models.LogbookEntry{
		EventID:       message.EventID,
		Content:       content,
		Category:      params.Category,
		CreatedByID:   actor.UserID,
		CreatedByName: actor.DisplayName,
	}
	if err := uc.logbookRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	// All three promotion fields are written in one update; the message is
	// either fully promoted or untouched. A concurrent promotion loses here
	// because the update filter excludes already-promoted messages. The
	// losing entry is removed so a failed promotion leaves no log record.
	if err := uc.messageRepo.SetPromotion(ctx, messageID, entry.ID, actor.UserID, time.Now()); err != nil {
		if delErr := uc.logbookRepo.Delete(ctx, entry.ID); delErr != nil {
			log.Warnw(ctx, "failed to remove logbook entry after promotion conflict",
				"entry_id", entry.ID.Hex(),
				"error", delErr)
		}
		if err == models.ErrNotFound {
			return nil, models.ErrAlreadyPromoted
		}
		return nil, fmt.Errorf("mark message promoted: %w", err)
	}

	log.Infow(ctx, "chat message promoted to logbook",
		"message_id", messageID.Hex(),
		"entry_id", entry.ID.Hex(),
		"promoted_by", actor.UserID)
	return entry, nil
}
