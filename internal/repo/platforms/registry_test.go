package platforms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incidentkit/chat-bridge/internal/models"
)

type stubClient struct {
	platform models.Platform
	caps     Capabilities
}

func (c *stubClient) Platform() models.Platform    { return c.platform }
func (c *stubClient) Capabilities() Capabilities   { return c.caps }
func (c *stubClient) CreateGroup(ctx context.Context, params CreateGroupParams) (*Group, error) {
	return &Group{ID: "g"}, nil
}
func (c *stubClient) CreateBot(ctx context.Context, groupID, callbackURL string) (*Bot, error) {
	return &Bot{ID: "b"}, nil
}
func (c *stubClient) PostMessage(ctx context.Context, params PostParams) error { return nil }
func (c *stubClient) DestroyBot(ctx context.Context, botID string) error       { return nil }
func (c *stubClient) ArchiveGroup(ctx context.Context, groupID string) error   { return nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	client := &stubClient{platform: models.PlatformGroupMe, caps: Capabilities{CanProvisionGroup: true}}

	require.NoError(t, registry.Register(client))

	got, err := registry.Get(models.PlatformGroupMe)
	require.NoError(t, err)
	assert.Same(t, client, got)

	assert.Error(t, registry.Register(client), "double registration is rejected")
	assert.Error(t, registry.Register(nil))
}

func TestRegistryUnknownPlatform(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get(models.PlatformSlack)
	var notSupported *models.PlatformNotSupportedError
	require.ErrorAs(t, err, &notSupported)
	assert.Equal(t, models.PlatformSlack, notSupported.Platform)
}

func TestRegistryGetProvisioner(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubClient{platform: models.PlatformGroupMe, caps: Capabilities{CanProvisionGroup: true}}))
	require.NoError(t, registry.Register(&stubClient{platform: models.PlatformTeams, caps: Capabilities{CanPostMessage: true}}))

	_, err := registry.GetProvisioner(models.PlatformGroupMe)
	assert.NoError(t, err)

	_, err = registry.GetProvisioner(models.PlatformTeams)
	var notSupported *models.PlatformNotSupportedError
	require.ErrorAs(t, err, &notSupported)
	assert.Equal(t, "group provisioning", notSupported.Operation)
}
