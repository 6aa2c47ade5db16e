package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/carousell/ct-go/pkg/workerpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/incidentkit/chat-bridge/internal/config"
	"github.com/incidentkit/chat-bridge/internal/models"
	"github.com/incidentkit/chat-bridge/internal/repo/mongodb"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms"
	"github.com/incidentkit/chat-bridge/pkg/util"
)

const fanoutJobTimeout = 30 * time.Second

// FanoutService delivers internal messages to the event's external
// channels on a bounded worker pool. Each mapping's delivery is an
// independent job: one platform failing or stalling never aborts delivery
// to the others, and nothing here ever propagates to the internal send
// path.
type FanoutService struct {
	conf        *config.Config
	mappingRepo mongodb.ChannelMappingRepository
	registry    *platforms.Registry
	pool        workerpool.Pool
	metrics     *prometheus.HistogramVec
}

var _ ExternalFanout = (*FanoutService)(nil)

func NewFanoutService(
	conf *config.Config,
	mappingRepo mongodb.ChannelMappingRepository,
	registry *platforms.Registry,
) (*FanoutService, error) {
	metrics, err := util.GetHistogramVec("external_fanout_deliveries", "status", "platform")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}

	workers := conf.Fanout.Workers
	if workers <= 0 {
		workers = 4
	}

	return &FanoutService{
		conf:        conf,
		mappingRepo: mappingRepo,
		registry:    registry,
		pool:        workerpool.New(workers),
		metrics:     metrics,
	}, nil
}

func (s *FanoutService) Broadcast(eventID, senderName, text string) {
	s.pool.Run(func() {
		ctx, cancel := util.NewTimeoutContext(context.Background(), fanoutJobTimeout)
		defer cancel()

		mappings, err := s.mappingRepo.ListActiveByEvent(ctx, eventID)
		if err != nil {
			log.Errorw(ctx, "failed to load mappings for fan-out", "event_id", eventID, "error", err)
			return
		}

		for _, mapping := range mappings {
			mappingID := mapping.ID
			s.pool.Run(func() {
				s.deliver(mappingID, senderName, text)
			})
		}
	})
}

// deliver re-reads the mapping on every attempt so the freshest
// conversation reference is always the one handed to the bridge.
func (s *FanoutService) deliver(mappingID primitive.ObjectID, senderName, text string) {
	ctx, cancel := util.NewTimeoutContext(context.Background(), fanoutJobTimeout)
	defer cancel()

	maxAttempts := s.conf.Fanout.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := time.Duration(s.conf.Fanout.RetryBackoffMs) * time.Millisecond

	formatted := fmt.Sprintf("[%s] %s", senderName, text)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		platform, err := s.attempt(ctx, mappingID, senderName, formatted)
		if err == nil {
			s.observe("success", platform, start)
			return
		}
		if err == errSkipDelivery {
			s.observe("skipped", platform, start)
			return
		}
		lastErr = err

		s.observe("error", platform, start)
		log.Warnw(ctx, "external delivery attempt failed",
			"mapping_id", mappingID.Hex(),
			"attempt", attempt,
			"error", err)

		if attempt < maxAttempts {
			time.Sleep(backoff * time.Duration(attempt))
		}
	}

	// Out of attempts: best-effort delivery, drop with an error log.
	log.Errorw(ctx, "external delivery dropped after retries",
		"mapping_id", mappingID.Hex(),
		"attempts", maxAttempts,
		"error", lastErr)
}

// errSkipDelivery marks non-retryable drops (mapping gone or deactivated
// between enqueue and delivery).
var errSkipDelivery = fmt.Errorf("delivery skipped")

func (s *FanoutService) attempt(ctx context.Context, mappingID primitive.ObjectID, senderName, formatted string) (models.Platform, error) {
	mapping, err := s.mappingRepo.GetByID(ctx, mappingID)
	if errors.Is(err, models.ErrNotFound) {
		return "", errSkipDelivery
	}
	if err != nil {
		// Transient store errors take the retry path.
		return "", fmt.Errorf("load mapping: %w", err)
	}
	if !mapping.IsActive {
		return mapping.Platform, errSkipDelivery
	}

	client, err := s.registry.Get(mapping.Platform)
	if err != nil {
		return mapping.Platform, errSkipDelivery
	}

	err = client.PostMessage(ctx, platforms.PostParams{
		GroupID:               mapping.ExternalGroupID,
		BotID:                 mapping.BotID,
		ConversationReference: mapping.ConversationReferenceJSON,
		SenderName:            senderName,
		Text:                  formatted,
	})
	return mapping.Platform, err
}

func (s *FanoutService) observe(status string, platform models.Platform, start time.Time) {
	label := string(platform)
	if label == "" {
		label = "unknown"
	}
	s.metrics.WithLabelValues(status, label).Observe(time.Since(start).Seconds())
}

func (s *FanoutService) Shutdown() {
	s.pool.Close()
	s.pool.Wait()
}
