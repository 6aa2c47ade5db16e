package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

type Controller interface {
	Health(c echo.Context) error

	EnsureDefaultThread(c echo.Context) error
	ListMessages(c echo.Context) error
	CreateMessage(c echo.Context) error
	PromoteMessage(c echo.Context) error

	CreateChannel(c echo.Context) error
	ListChannels(c echo.Context) error
	DeactivateChannel(c echo.Context) error

	ProcessWebhook(c echo.Context) error
	UpsertConversationReference(c echo.Context) error

	ListConnectors(c echo.Context) error
	RenameConnector(c echo.Context) error
	ReactivateConnector(c echo.Context) error
	CleanupConnectors(c echo.Context) error
}

type controller struct {
	chatUsecase      usecase.ChatUsecase
	messagingUsecase usecase.MessagingUsecase
}

func NewHandler(
	chatUsecase usecase.ChatUsecase,
	messagingUsecase usecase.MessagingUsecase,
) Controller {
	return &controller{
		chatUsecase:      chatUsecase,
		messagingUsecase: messagingUsecase,
	}
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "chat-bridge",
	})
}

// actorFromRequest builds the caller identity from gateway headers. Every
// mutating handler resolves the actor explicitly instead of reading it from
// ambient request state.
func actorFromRequest(c echo.Context) (models.Actor, error) {
	h := c.Request().Header
	actor := models.Actor{
		UserID:      h.Get("X-User-ID"),
		DisplayName: h.Get("X-User-Name"),
		TenantID:    h.Get("X-Tenant-ID"),
	}
	if actor.UserID == "" {
		return models.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing X-User-ID header")
	}
	if actor.DisplayName == "" {
		actor.DisplayName = actor.UserID
	}
	return actor, nil
}
