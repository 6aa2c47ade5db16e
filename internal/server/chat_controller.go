package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/incidentkit/chat-bridge/internal/usecase"
)

type createMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type promoteMessageRequest struct {
	Notes    string `json:"notes"`
	Category string `json:"category"`
}

func (h *controller) EnsureDefaultThread(c echo.Context) error {
	eventID := c.Param("eventId")
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing event id")
	}

	thread, err := h.chatUsecase.EnsureThreadExists(c.Request().Context(), eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, thread)
}

func (h *controller) ListMessages(c echo.Context) error {
	threadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid thread id")
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}
	var before *primitive.ObjectID
	if raw := c.QueryParam("before"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid before cursor")
		}
		before = &id
	}

	messages, err := h.chatUsecase.GetThreadMessages(c.Request().Context(), threadID, limit, before)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}

func (h *controller) CreateMessage(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	threadID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid thread id")
	}

	var req createMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message, err := h.chatUsecase.CreateMessage(c.Request().Context(), actor, usecase.CreateMessageParams{
		ThreadID: threadID,
		Text:     req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, message)
}

func (h *controller) PromoteMessage(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	messageID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}

	var req promoteMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entry, err := h.chatUsecase.PromoteToLogbook(c.Request().Context(), actor, messageID, usecase.PromoteParams{
		Notes:    req.Notes,
		Category: req.Category,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entry)
}
