package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

type createChannelRequest struct {
	Platform   string `json:"platform" validate:"required"`
	CustomName string `json:"custom_name"`
}

type renameConnectorRequest struct {
	Name string `json:"name" validate:"required"`
}

type cleanupConnectorsRequest struct {
	InactiveDaysThreshold int `json:"inactive_days_threshold"`
}

func (h *controller) CreateChannel(c echo.Context) error {
	actor, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	eventID := c.Param("eventId")
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing event id")
	}

	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	platform, err := models.ParsePlatform(req.Platform)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	mapping, err := h.messagingUsecase.CreateChannel(c.Request().Context(), actor, usecase.CreateChannelParams{
		EventID:    eventID,
		Platform:   platform,
		CustomName: req.CustomName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, mapping)
}

func (h *controller) ListChannels(c echo.Context) error {
	eventID := c.Param("eventId")
	if eventID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing event id")
	}

	mappings, err := h.messagingUsecase.ListMappings(c.Request().Context(), eventID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"channels": mappings})
}

func (h *controller) DeactivateChannel(c echo.Context) error {
	if _, err := actorFromRequest(c); err != nil {
		return err
	}
	mappingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid channel id")
	}

	// External teardown is opt-in; a plain DELETE only deactivates locally.
	archive := c.QueryParam("archive") == "true"
	if err := h.messagingUsecase.Deactivate(c.Request().Context(), mappingID, archive); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *controller) ListConnectors(c echo.Context) error {
	connectors, err := h.messagingUsecase.ListConnectors(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"connectors": connectors})
}

func (h *controller) RenameConnector(c echo.Context) error {
	if _, err := actorFromRequest(c); err != nil {
		return err
	}
	mappingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid connector id")
	}

	var req renameConnectorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.messagingUsecase.RenameConnector(c.Request().Context(), mappingID, req.Name); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *controller) ReactivateConnector(c echo.Context) error {
	if _, err := actorFromRequest(c); err != nil {
		return err
	}
	mappingID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid connector id")
	}

	if err := h.messagingUsecase.ReactivateConnector(c.Request().Context(), mappingID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *controller) CleanupConnectors(c echo.Context) error {
	if _, err := actorFromRequest(c); err != nil {
		return err
	}

	var req cleanupConnectorsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	count, err := h.messagingUsecase.CleanupStaleConnectors(c.Request().Context(), req.InactiveDaysThreshold)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"deactivated_count": count})
}
