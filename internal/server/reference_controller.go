package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

type conversationReferenceRequest struct {
	Platform              string `json:"platform"`
	ConversationID        string `json:"conversationId" validate:"required"`
	ConversationReference string `json:"conversationReference" validate:"required"`
	ChannelID             string `json:"channelId"`
	TenantID              string `json:"tenantId"`
	InstalledByName       string `json:"installedByName"`
}

// UpsertConversationReference registers or refreshes the routing token for a
// bridge-attached conversation. The bridge calls this on every inbound
// activity, so the handler is unconditional and idempotent.
func (h *controller) UpsertConversationReference(c echo.Context) error {
	var req conversationReferenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	platform := models.PlatformTeams
	if req.Platform != "" {
		parsed, err := models.ParsePlatform(req.Platform)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		platform = parsed
	}

	mapping, err := h.messagingUsecase.UpsertConversationReference(c.Request().Context(), usecase.ConversationReferenceParams{
		Platform:                  platform,
		ConversationID:            req.ConversationID,
		ConversationReferenceJSON: req.ConversationReference,
		ChannelID:                 req.ChannelID,
		TenantID:                  req.TenantID,
		InstalledByName:           req.InstalledByName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapping)
}
