package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/carousell/ct-go/pkg/logger"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/incidentkit/chat-bridge/internal/config"
	pkgmdw "github.com/incidentkit/chat-bridge/internal/server/middleware"
)

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler Controller,
) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(logger.MustNamed("http"))

	logConfig := pkgmdw.LogRequestConfig{
		Logger: logger.MustNamed("http"),
		Enabled: func(c echo.Context) bool {
			uri := c.Request().RequestURI
			return uri != "/health" && uri != "/metrics"
		},
		KeyAndValues: func(c echo.Context) []any {
			args := make([]any, 0, 4)
			if id := c.Request().Header.Get("X-User-ID"); id != "" {
				args = append(args, "user_id", id)
			}
			if eventID := c.Param("eventId"); eventID != "" {
				args = append(args, "event_id", eventID)
			}
			return args
		},
	}

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(pkgmdw.LogRequest(logConfig))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return nil
		},
	}))

	e.GET("/health", handler.Health)

	// Platform callbacks and bridge registration live outside /api/v1: they
	// are authenticated by webhook secret, not by gateway headers.
	e.POST("/webhooks/:platform/:mappingId", handler.ProcessWebhook)
	e.PUT("/chat/external/conversation-reference", handler.UpsertConversationReference)

	api := e.Group("/api/v1")
	api.GET("/events/:eventId/channels", handler.ListChannels)
	api.POST("/events/:eventId/channels", handler.CreateChannel)
	api.DELETE("/events/:eventId/channels/:id", handler.DeactivateChannel)
	api.GET("/events/:eventId/threads/default", handler.EnsureDefaultThread)
	api.GET("/threads/:id/messages", handler.ListMessages)
	api.POST("/threads/:id/messages", handler.CreateMessage)
	api.POST("/messages/:id/promote", handler.PromoteMessage)
	api.GET("/connectors", handler.ListConnectors)
	api.PUT("/connectors/:id/name", handler.RenameConnector)
	api.PUT("/connectors/:id/reactivate", handler.ReactivateConnector)
	api.POST("/connectors/cleanup", handler.CleanupConnectors)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
