package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/incidentkit/chat-bridge/internal/models"
	pkgmdw "github.com/incidentkit/chat-bridge/internal/server/middleware"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

type nopLogger struct{}

func (nopLogger) Debugw(string, ...interface{}) {}
func (nopLogger) Infow(string, ...interface{})  {}
func (nopLogger) Warnw(string, ...interface{})  {}
func (nopLogger) Errorw(string, ...interface{}) {}

// fakeChat implements usecase.ChatUsecase with overridable behavior.
type fakeChat struct {
	ensureThread func(ctx context.Context, eventID string) (*models.ChatThread, error)
	create       func(ctx context.Context, actor models.Actor, params usecase.CreateMessageParams) (*models.ChatMessage, error)
	list         func(ctx context.Context, threadID primitive.ObjectID, limit int, before *primitive.ObjectID) ([]*models.ChatMessage, error)
	promote      func(ctx context.Context, actor models.Actor, messageID primitive.ObjectID, params usecase.PromoteParams) (*models.LogbookEntry, error)
}

func (f *fakeChat) EnsureThreadExists(ctx context.Context, eventID string) (*models.ChatThread, error) {
	return f.ensureThread(ctx, eventID)
}

func (f *fakeChat) CreateMessage(ctx context.Context, actor models.Actor, params usecase.CreateMessageParams) (*models.ChatMessage, error) {
	return f.create(ctx, actor, params)
}

func (f *fakeChat) GetThreadMessages(ctx context.Context, threadID primitive.ObjectID, limit int, before *primitive.ObjectID) ([]*models.ChatMessage, error) {
	return f.list(ctx, threadID, limit, before)
}

func (f *fakeChat) PromoteToLogbook(ctx context.Context, actor models.Actor, messageID primitive.ObjectID, params usecase.PromoteParams) (*models.LogbookEntry, error) {
	return f.promote(ctx, actor, messageID, params)
}

// fakeMessaging implements usecase.MessagingUsecase with overridable
// behavior; unset methods fail the test if called.
type fakeMessaging struct {
	t *testing.T

	createChannel  func(ctx context.Context, actor models.Actor, params usecase.CreateChannelParams) (*models.ExternalChannelMapping, error)
	processWebhook func(ctx context.Context, platform models.Platform, mappingID primitive.ObjectID, secret string, payload models.WebhookPayload) error
	deactivate     func(ctx context.Context, mappingID primitive.ObjectID, archiveExternal bool) error
	upsertRef      func(ctx context.Context, params usecase.ConversationReferenceParams) (*models.ExternalChannelMapping, error)
}

func (f *fakeMessaging) CreateChannel(ctx context.Context, actor models.Actor, params usecase.CreateChannelParams) (*models.ExternalChannelMapping, error) {
	if f.createChannel == nil {
		f.t.Fatal("unexpected CreateChannel call")
	}
	return f.createChannel(ctx, actor, params)
}

func (f *fakeMessaging) ListMappings(ctx context.Context, eventID string) ([]*models.ExternalChannelMapping, error) {
	return nil, nil
}

func (f *fakeMessaging) Deactivate(ctx context.Context, mappingID primitive.ObjectID, archiveExternal bool) error {
	if f.deactivate == nil {
		f.t.Fatal("unexpected Deactivate call")
	}
	return f.deactivate(ctx, mappingID, archiveExternal)
}

func (f *fakeMessaging) ProcessWebhook(ctx context.Context, platform models.Platform, mappingID primitive.ObjectID, secret string, payload models.WebhookPayload) error {
	if f.processWebhook == nil {
		f.t.Fatal("unexpected ProcessWebhook call")
	}
	return f.processWebhook(ctx, platform, mappingID, secret, payload)
}

func (f *fakeMessaging) UpsertConversationReference(ctx context.Context, params usecase.ConversationReferenceParams) (*models.ExternalChannelMapping, error) {
	if f.upsertRef == nil {
		f.t.Fatal("unexpected UpsertConversationReference call")
	}
	return f.upsertRef(ctx, params)
}

func (f *fakeMessaging) ListConnectors(ctx context.Context) ([]*models.ExternalChannelMapping, error) {
	return nil, nil
}

func (f *fakeMessaging) RenameConnector(ctx context.Context, mappingID primitive.ObjectID, name string) error {
	return nil
}

func (f *fakeMessaging) ReactivateConnector(ctx context.Context, mappingID primitive.ObjectID) error {
	return nil
}

func (f *fakeMessaging) CleanupStaleConnectors(ctx context.Context, inactiveDays int) (int, error) {
	return 0, nil
}

func newTestServer(chat usecase.ChatUsecase, messaging usecase.MessagingUsecase) *echo.Echo {
	e := echo.New()
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(nopLogger{})

	handler := NewHandler(chat, messaging)
	e.POST("/webhooks/:platform/:mappingId", handler.ProcessWebhook)
	e.DELETE("/api/v1/events/:eventId/channels/:id", handler.DeactivateChannel)
	e.PUT("/chat/external/conversation-reference", handler.UpsertConversationReference)
	e.GET("/api/v1/events/:eventId/threads/default", handler.EnsureDefaultThread)
	e.POST("/api/v1/threads/:id/messages", handler.CreateMessage)
	e.POST("/api/v1/messages/:id/promote", handler.PromoteMessage)
	return e
}

func doJSON(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
