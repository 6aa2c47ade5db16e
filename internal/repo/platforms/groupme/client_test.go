package groupme

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incidentkit/chat-bridge/internal/config"
	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.Config{
		GroupMe: config.GroupMeConfig{
			BaseURL:     baseURL,
			AccessToken: "test-token",
		},
	})
}

func TestCreateGroup(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/groups", r.URL.Path)
		require.Equal(t, "test-token", r.URL.Query().Get("token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"response":{"id":"g-77","name":"Event Chat (evt-1)","share_url":"https://groupme.com/join/g-77"},"meta":{"code":201}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	group, err := client.CreateGroup(context.Background(), platforms.CreateGroupParams{
		Name:        "Event Chat (evt-1)",
		Description: "Coordination channel",
	})
	require.NoError(t, err)

	assert.Equal(t, "g-77", group.ID)
	assert.Equal(t, "https://groupme.com/join/g-77", group.ShareURL)
	assert.Equal(t, "Event Chat (evt-1)", gotBody["name"])
	assert.Equal(t, true, gotBody["share"])
}

func TestCreateBotSendsCallbackURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bots", r.URL.Path)

		var body struct {
			Bot map[string]any `json:"bot"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "g-77", body.Bot["group_id"])
		assert.Equal(t, "https://chat.example.com/webhooks/groupme/abc?token=s3cret", body.Bot["callback_url"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"response":{"bot":{"bot_id":"bot-9"}},"meta":{"code":201}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	bot, err := client.CreateBot(context.Background(), "g-77", "https://chat.example.com/webhooks/groupme/abc?token=s3cret")
	require.NoError(t, err)
	assert.Equal(t, "bot-9", bot.ID)
}

func TestPostMessageRequiresBotID(t *testing.T) {
	client := newTestClient("http://unused.invalid")

	err := client.PostMessage(context.Background(), platforms.PostParams{Text: "hi"})
	var platformErr *models.PlatformError
	require.ErrorAs(t, err, &platformErr)
	assert.Equal(t, models.PlatformGroupMe, platformErr.Platform)
}

func TestAPIErrorSurfacesMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"response":null,"meta":{"code":400,"errors":["name is required"]}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreateGroup(context.Background(), platforms.CreateGroupParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}
