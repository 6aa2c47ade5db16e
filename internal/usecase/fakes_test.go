package usecase

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/repo/mongodb"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms"
)

type fakeThreadRepo struct {
	mu      sync.Mutex
	threads map[string]*models.ChatThread
	byID    map[primitive.ObjectID]*models.ChatThread
	ensures int
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{
		threads: make(map[string]*models.ChatThread),
		byID:    make(map[primitive.ObjectID]*models.ChatThread),
	}
}

func (r *fakeThreadRepo) EnsureDefaultThread(ctx context.Context, eventID string) (*models.ChatThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensures++
	if t, ok := r.threads[eventID]; ok {
		return t, nil
	}
	t := &models.ChatThread{
		ID:                   primitive.NewObjectID(),
		EventID:              eventID,
		Name:                 "Event Chat",
		IsDefaultEventThread: true,
		CreatedAt:            time.Now(),
	}
	r.threads[eventID] = t
	r.byID[t.ID] = t
	return t, nil
}

func (r *fakeThreadRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byID[id]; ok {
		return t, nil
	}
	return nil, models.ErrNotFound
}

func (r *fakeThreadRepo) GetDefaultThread(ctx context.Context, eventID string) (*models.ChatThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.threads[eventID]; ok {
		return t, nil
	}
	return nil, models.ErrNotFound
}

var _ mongodb.ChatThreadRepository = (*fakeThreadRepo)(nil)

type externalKey struct {
	source models.Platform
	id     string
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[primitive.ObjectID]*models.ChatMessage
	external map[externalKey]primitive.ObjectID

	// Runs once before the next SetPromotion, outside the lock, to let a
	// test interleave a competing promotion.
	beforeSetPromotion func()
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[primitive.ObjectID]*models.ChatMessage),
		external: make(map[externalKey]primitive.ObjectID),
	}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ExternalMessageID != "" {
		key := externalKey{message.ExternalSource, message.ExternalMessageID}
		if _, exists := r.external[key]; exists {
			return models.ErrDuplicateMessage
		}
		message.ID = primitive.NewObjectID()
		r.external[key] = message.ID
	} else {
		message.ID = primitive.NewObjectID()
	}
	message.CreatedAt = time.Now()
	r.messages[message.ID] = message
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.messages[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (r *fakeMessageRepo) GetByExternalID(ctx context.Context, platform models.Platform, externalMessageID string) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.external[externalKey{platform, externalMessageID}]; ok {
		copied := *r.messages[id]
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (r *fakeMessageRepo) ListThreadMessages(ctx context.Context, threadID primitive.ObjectID, limit int, before *primitive.ObjectID) ([]*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ChatMessage
	for _, m := range r.messages {
		if m.ThreadID == threadID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) SetPromotion(ctx context.Context, messageID, entryID primitive.ObjectID, promotedByID string, promotedAt time.Time) error {
	if hook := r.beforeSetPromotion; hook != nil {
		r.beforeSetPromotion = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok || m.PromotedToLogbookEntryID != nil {
		return models.ErrNotFound
	}
	m.PromotedToLogbookEntryID = &entryID
	m.PromotedToLogbookAt = &promotedAt
	m.PromotedToLogbookByID = promotedByID
	return nil
}

var _ mongodb.ChatMessageRepository = (*fakeMessageRepo)(nil)

type fakeMappingRepo struct {
	mu       sync.Mutex
	mappings map[primitive.ObjectID]*models.ExternalChannelMapping

	// When set, the next failGetByIDTimes GetByID calls return failGetByID.
	failGetByID      error
	failGetByIDTimes int
}

func newFakeMappingRepo() *fakeMappingRepo {
	return &fakeMappingRepo{
		mappings: make(map[primitive.ObjectID]*models.ExternalChannelMapping),
	}
}

func (r *fakeMappingRepo) add(m *models.ExternalChannelMapping) *models.ExternalChannelMapping {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	r.mappings[m.ID] = m
	return m
}

func (r *fakeMappingRepo) Create(ctx context.Context, mapping *models.ExternalChannelMapping) error {
	r.add(mapping)
	return nil
}

func (r *fakeMappingRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ExternalChannelMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGetByIDTimes > 0 {
		r.failGetByIDTimes--
		return nil, r.failGetByID
	}
	if m, ok := r.mappings[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (r *fakeMappingRepo) ListActiveByEvent(ctx context.Context, eventID string) ([]*models.ExternalChannelMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ExternalChannelMapping
	for _, m := range r.mappings {
		if m.EventID == eventID && m.IsActive {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMappingRepo) ListAll(ctx context.Context) ([]*models.ExternalChannelMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ExternalChannelMapping
	for _, m := range r.mappings {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMappingRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[id]
	if !ok {
		return models.ErrNotFound
	}
	m.IsActive = false
	return nil
}

func (r *fakeMappingRepo) Reactivate(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[id]
	if !ok {
		return models.ErrNotFound
	}
	m.IsActive = true
	return nil
}

func (r *fakeMappingRepo) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[id]
	if !ok {
		return models.ErrNotFound
	}
	m.ExternalGroupName = name
	return nil
}

func (r *fakeMappingRepo) UpsertConversationReference(ctx context.Context, params mongodb.UpsertReferenceParams) (*models.ExternalChannelMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, m := range r.mappings {
		if m.Platform == params.Platform && m.ExternalGroupID == params.ConversationID {
			m.ConversationReferenceJSON = params.ConversationReferenceJSON
			m.LastActivityAt = &now
			copied := *m
			return &copied, nil
		}
	}
	m := &models.ExternalChannelMapping{
		ID:                        primitive.NewObjectID(),
		Platform:                  params.Platform,
		ExternalGroupID:           params.ConversationID,
		ConversationReferenceJSON: params.ConversationReferenceJSON,
		TenantID:                  params.TenantID,
		InstalledByName:           params.InstalledByName,
		IsEmulator:                params.IsEmulator,
		IsActive:                  true,
		LastActivityAt:            &now,
		CreatedAt:                 now,
	}
	r.mappings[m.ID] = m
	copied := *m
	return &copied, nil
}

func (r *fakeMappingRepo) TouchActivity(ctx context.Context, id primitive.ObjectID, referenceJSON string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[id]
	if !ok {
		return models.ErrNotFound
	}
	now := time.Now()
	m.LastActivityAt = &now
	if referenceJSON != "" {
		m.ConversationReferenceJSON = referenceJSON
	}
	return nil
}

func (r *fakeMappingRepo) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.ExternalChannelMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ExternalChannelMapping
	for _, m := range r.mappings {
		if !m.IsActive {
			continue
		}
		if m.IsEmulator || m.LastActivityAt == nil || m.LastActivityAt.Before(cutoff) {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

var _ mongodb.ChannelMappingRepository = (*fakeMappingRepo)(nil)

type fakeLogbookRepo struct {
	mu      sync.Mutex
	entries map[primitive.ObjectID]*models.LogbookEntry
}

func newFakeLogbookRepo() *fakeLogbookRepo {
	return &fakeLogbookRepo{entries: make(map[primitive.ObjectID]*models.LogbookEntry)}
}

func (r *fakeLogbookRepo) Create(ctx context.Context, entry *models.LogbookEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeLogbookRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
	return nil
}

func (r *fakeLogbookRepo) entryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *fakeLogbookRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.LogbookEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

var _ mongodb.LogbookRepository = (*fakeLogbookRepo)(nil)

type hubCall struct {
	eventID string
	message *models.ChatMessage
}

type fakeHub struct {
	mu    sync.Mutex
	calls []hubCall
}

func (h *fakeHub) BroadcastMessageCreated(ctx context.Context, eventID string, message *models.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hubCall{eventID: eventID, message: message})
}

func (h *fakeHub) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

type fanoutCall struct {
	eventID    string
	senderName string
	text       string
}

type fakeFanout struct {
	mu    sync.Mutex
	calls []fanoutCall
}

func (f *fakeFanout) Broadcast(eventID, senderName, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fanoutCall{eventID, senderName, text})
}

func (f *fakeFanout) Shutdown() {}

type postedMessage struct {
	groupID   string
	botID     string
	reference string
	sender    string
	text      string
}

// fakePlatformClient implements platforms.Client with overridable behavior
// per test.
type fakePlatformClient struct {
	mu       sync.Mutex
	platform models.Platform
	caps     platforms.Capabilities

	createGroupErr error
	createBotErr   error
	postErr        error

	posted       []postedMessage
	destroyed    []string
	archived     []string
	callbackURLs []string
}

func newFakeGroupMeClient() *fakePlatformClient {
	return &fakePlatformClient{
		platform: models.PlatformGroupMe,
		caps: platforms.Capabilities{
			CanProvisionGroup: true,
			CanPostMessage:    true,
			CanArchiveGroup:   true,
		},
	}
}

func (c *fakePlatformClient) Platform() models.Platform            { return c.platform }
func (c *fakePlatformClient) Capabilities() platforms.Capabilities { return c.caps }

func (c *fakePlatformClient) CreateGroup(ctx context.Context, params platforms.CreateGroupParams) (*platforms.Group, error) {
	if c.createGroupErr != nil {
		return nil, c.createGroupErr
	}
	return &platforms.Group{ID: "group-1", Name: params.Name, ShareURL: "https://share/group-1"}, nil
}

func (c *fakePlatformClient) CreateBot(ctx context.Context, groupID, callbackURL string) (*platforms.Bot, error) {
	c.mu.Lock()
	c.callbackURLs = append(c.callbackURLs, callbackURL)
	c.mu.Unlock()
	if c.createBotErr != nil {
		return nil, c.createBotErr
	}
	return &platforms.Bot{ID: "bot-1"}, nil
}

func (c *fakePlatformClient) PostMessage(ctx context.Context, params platforms.PostParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.postErr != nil {
		return c.postErr
	}
	c.posted = append(c.posted, postedMessage{
		groupID:   params.GroupID,
		botID:     params.BotID,
		reference: params.ConversationReference,
		sender:    params.SenderName,
		text:      params.Text,
	})
	return nil
}

func (c *fakePlatformClient) DestroyBot(ctx context.Context, botID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.destroyed = append(c.destroyed, botID)
	return nil
}

func (c *fakePlatformClient) ArchiveGroup(ctx context.Context, groupID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archived = append(c.archived, groupID)
	return nil
}

func (c *fakePlatformClient) postedMessages() []postedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]postedMessage, len(c.posted))
	copy(out, c.posted)
	return out
}

var _ platforms.Client = (*fakePlatformClient)(nil)
