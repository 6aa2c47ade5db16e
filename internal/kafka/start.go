package kafka

import (
	"context"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.uber.org/fx"

	"github.com/incidentkit/chat-bridge/internal/config"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

// StartConsumer wires the bus consumer into the fx lifecycle. Messages
// created elsewhere in the platform reach external channels through here.
func StartConsumer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	fanout usecase.ExternalFanout,
) error {
	consumer, err := NewConsumer(&conf.Kafka, NewEventHandler(fanout))
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := consumer.Start(context.Background()); err != nil {
					log.Errorw(ctx, "kafka consumer stopped", "error", err)
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return consumer.Stop(ctx)
		},
	})
	return nil
}
