package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Hub      HubConfig      `envPrefix:"HUB_"`
	GroupMe  GroupMeConfig  `envPrefix:"GROUPME_"`
	Bridge   BridgeConfig   `envPrefix:"BRIDGE_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Fanout   FanoutConfig   `envPrefix:"FANOUT_"`
	Cleanup  CleanupConfig  `envPrefix:"CLEANUP_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:"0.0.0.0:8080"`
}

type DatabaseConfig struct {
	Hosts    []string `env:"HOSTS" envDefault:"localhost:27017"`
	Database string   `env:"DATABASE" envDefault:"chatbridge"`
	Username string   `env:"USERNAME"`
	Password string   `env:"PASSWORD"`
	AuthDB   string   `env:"AUTH_DB" envDefault:"admin"`
	Direct   bool     `env:"DIRECT" envDefault:"true"`
}

// HubConfig points at the realtime hub that pushes message-created events
// to connected internal clients.
type HubConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8090"`
}

type GroupMeConfig struct {
	BaseURL     string `env:"BASE_URL" envDefault:"https://api.groupme.com/v3"`
	AccessToken string `env:"ACCESS_TOKEN"`
	// Public base URL of this service, used to build bot callback URLs.
	CallbackBaseURL string `env:"CALLBACK_BASE_URL" envDefault:"http://localhost:8080"`
}

// BridgeConfig covers both sides of the stateless bot bridge: the server
// uses Addr/BaseURL to reach the bridge's /internal/send endpoint, the
// bridge process uses ServerBaseURL to reach this service.
type BridgeConfig struct {
	Addr          string `env:"ADDR" envDefault:"0.0.0.0:8081"`
	BaseURL       string `env:"BASE_URL" envDefault:"http://localhost:8081"`
	ServerBaseURL string `env:"SERVER_BASE_URL" envDefault:"http://localhost:8080"`
	// Connector base URL for activities whose conversation reference omits
	// a service endpoint (emulator traffic).
	FallbackServiceURL string `env:"FALLBACK_SERVICE_URL"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"chat-events"`
	GroupID string   `env:"GROUP_ID" envDefault:"chat-bridge"`
}

type FanoutConfig struct {
	Workers     int `env:"WORKERS" envDefault:"4"`
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"3"`
	// Base backoff in milliseconds between delivery attempts.
	RetryBackoffMs int `env:"RETRY_BACKOFF_MS" envDefault:"500"`
}

type CleanupConfig struct {
	// Default threshold for bulk connector cleanup when the request does
	// not supply one.
	InactiveDays int `env:"INACTIVE_DAYS" envDefault:"30"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
