package platforms

import (
	"fmt"
	"sync"

	"github.com/incidentkit/chat-bridge/internal/models"
)

// Registry holds the registered platform clients keyed by platform.
type Registry struct {
	clients map[models.Platform]Client
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[models.Platform]Client),
	}
}

func (r *Registry) Register(client Client) error {
	if client == nil {
		return fmt.Errorf("client cannot be nil")
	}
	platform := client.Platform()
	if platform == "" {
		return fmt.Errorf("platform cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[platform]; exists {
		return fmt.Errorf("platform %s already registered", platform)
	}
	r.clients[platform] = client
	return nil
}

// Get returns the client for a platform, or a typed not-supported error
// that callers surface before any network or database effect.
func (r *Registry) Get(platform models.Platform) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[platform]
	if !exists {
		return nil, &models.PlatformNotSupportedError{Platform: platform}
	}
	return client, nil
}

// GetProvisioner returns the client only if it can create groups.
func (r *Registry) GetProvisioner(platform models.Platform) (Client, error) {
	client, err := r.Get(platform)
	if err != nil {
		return nil, err
	}
	if !client.Capabilities().CanProvisionGroup {
		return nil, &models.PlatformNotSupportedError{Platform: platform, Operation: "group provisioning"}
	}
	return client, nil
}

func (r *Registry) List() []models.Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]models.Platform, 0, len(r.clients))
	for platform := range r.clients {
		platforms = append(platforms, platform)
	}
	return platforms
}
