package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/incidentkit/chat-bridge/internal/models"
)

// ProcessWebhook ingests a platform callback. Every discard condition still
// answers 200 so the platform does not redeliver what we chose to drop.
func (h *controller) ProcessWebhook(c echo.Context) error {
	platform, err := models.ParsePlatform(c.Param("platform"))
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "discarded"})
	}
	mappingID, err := primitive.ObjectIDFromHex(c.Param("mappingId"))
	if err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "discarded"})
	}

	var payload models.WebhookPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	}

	secret := c.QueryParam("token")
	if err := h.messagingUsecase.ProcessWebhook(c.Request().Context(), platform, mappingID, secret, payload); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
