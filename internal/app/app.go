package app

import (
	"context"

	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/incidentkit/chat-bridge/internal/bridge"
	"github.com/incidentkit/chat-bridge/internal/config"
	bridgerepo "github.com/incidentkit/chat-bridge/internal/repo/bridge"
	"github.com/incidentkit/chat-bridge/internal/repo/hub"
	"github.com/incidentkit/chat-bridge/internal/repo/mongodb"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms/groupme"
	"github.com/incidentkit/chat-bridge/internal/repo/platforms/teams"
	"github.com/incidentkit/chat-bridge/internal/server"
	"github.com/incidentkit/chat-bridge/internal/usecase"
)

// Invoke builds the server process: persistence, platform clients, usecases
// and whatever entrypoints the caller wires in (HTTP server, kafka consumer).
func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,
			newPlatformRegistry,
			newHubBroadcaster,
			newExternalFanout,

			server.NewHandler,

			usecase.NewChatUsecase,
			usecase.NewMessagingUsecase,

			mongodb.NewChatThreadRepository,
			mongodb.NewChatMessageRepository,
			mongodb.NewChannelMappingRepository,
			mongodb.NewLogbookRepository,

			bridgerepo.NewClient,
			hub.NewClient,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}

// InvokeBridge builds the stateless bot bridge process. It carries no
// persistence: just the two HTTP clients and the listener.
func InvokeBridge(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			bridge.NewServerClient,
			bridge.NewConnectorClient,
			bridge.NewHandler,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}

func newPlatformRegistry(conf *config.Config, bridgeClient *bridgerepo.Client) (*platforms.Registry, error) {
	registry := platforms.NewRegistry()
	if err := registry.Register(groupme.NewClient(conf)); err != nil {
		return nil, err
	}
	if err := registry.Register(teams.NewClient(bridgeClient)); err != nil {
		return nil, err
	}
	return registry, nil
}

func newHubBroadcaster(client *hub.Client) usecase.HubBroadcaster {
	return hub.NewBroadcaster(client)
}

func newExternalFanout(
	lc fx.Lifecycle,
	conf *config.Config,
	mappingRepo mongodb.ChannelMappingRepository,
	registry *platforms.Registry,
) (usecase.ExternalFanout, error) {
	fanout, err := usecase.NewFanoutService(conf, mappingRepo, registry)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			fanout.Shutdown()
			return nil
		},
	})
	return fanout, nil
}
