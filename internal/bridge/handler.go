package bridge

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/incidentkit/chat-bridge/internal/models"
)

type Controller interface {
	Health(c echo.Context) error
	PostActivity(c echo.Context) error
	InternalSend(c echo.Context) error
}

type controller struct {
	server    *ServerClient
	connector *ConnectorClient
}

func NewHandler(server *ServerClient, connector *ConnectorClient) Controller {
	return &controller{
		server:    server,
		connector: connector,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "chat-bridge-bot",
	})
}

// PostActivity handles one inbound connector activity. The routing token is
// refreshed on every activity, message or not, so the server always holds a
// reference that can still address the conversation.
func (h *controller) PostActivity(c echo.Context) error {
	var activity Activity
	if err := c.Bind(&activity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid activity payload")
	}
	if activity.Conversation.ID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "activity has no conversation id")
	}

	ctx := c.Request().Context()

	ref := ReferenceFromActivity(activity)
	refJSON, err := json.Marshal(ref)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "serialize conversation reference")
	}

	mappingID, err := h.server.RegisterReference(ctx, ref, string(refJSON), activity.From.Name)
	if err != nil {
		log.Errorw(ctx, "conversation reference registration failed",
			"conversation_id", activity.Conversation.ID,
			"error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "reference registration failed")
	}

	if activity.Type == ActivityTypeMessage {
		text := StripMention(activity.Text, activity.Recipient.Name)
		if text != "" {
			messageID := activity.ID
			if messageID == "" {
				messageID = uuid.NewString()
			}
			payload := models.WebhookPayload{
				GroupID:    activity.Conversation.ID,
				MessageID:  messageID,
				SenderType: models.SenderTypeUser,
				SenderName: activity.From.Name,
				UserID:     activity.From.ID,
				Text:       text,
				CreatedAt:  time.Now().Unix(),
			}
			if err := h.server.ForwardMessage(ctx, mappingID, payload); err != nil {
				log.Errorw(ctx, "inbound message forward failed",
					"conversation_id", activity.Conversation.ID,
					"mapping_id", mappingID,
					"error", err)
				return echo.NewHTTPError(http.StatusBadGateway, "message forward failed")
			}
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type sendRequest struct {
	ConversationReferenceJSON string `json:"conversationReferenceJson" validate:"required"`
	Message                   string `json:"message" validate:"required"`
	SenderName                string `json:"senderName"`
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// InternalSend delivers a message using only what the request carries. A
// bad reference is the caller's error; a connector failure is not.
func (h *controller) InternalSend(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, sendResponse{Error: "invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, sendResponse{Error: err.Error()})
	}

	ref, err := ParseReference(req.ConversationReferenceJSON)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, sendResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	if err := h.connector.Deliver(ctx, ref, req.Message); err != nil {
		log.Errorw(ctx, "connector delivery failed",
			"conversation_id", ref.Conversation.ID,
			"error", err)
		return c.JSON(http.StatusBadGateway, sendResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, sendResponse{Success: true})
}
