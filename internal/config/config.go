// Package config loads the orange configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/orangewallet/orange/internal/webhook"
)

// Config represents the application configuration.
type Config struct {
	Network     string           `yaml:"network"`
	StoragePath string           `yaml:"storage_path"`
	Engine      EngineConfig     `yaml:"engine"`
	Webhooks    []webhook.Target `yaml:"webhooks,omitempty"`
	Daemon      DaemonConfig     `yaml:"daemon,omitempty"`
}

// EngineConfig points at the external wallet engine.
type EngineConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token,omitempty"`

	// Transport selects how the daemon subscribes to the engine's event
	// stream: "websocket" (default) or "nats".
	Transport   string `yaml:"transport,omitempty"`
	NATSURL     string `yaml:"nats_url,omitempty"`
	NATSSubject string `yaml:"nats_subject,omitempty"`

	// SyncIntervalSecs sets how often the daemon polls engine info for
	// connectivity reporting.
	SyncIntervalSecs int `yaml:"sync_interval_secs,omitempty"`
}

// DaemonConfig holds daemon runtime settings.
type DaemonConfig struct {
	AdminPort          int `yaml:"admin_port,omitempty"`
	WebhookTimeoutSecs int `yaml:"webhook_timeout_secs,omitempty"`
}

// Transport values for EngineConfig.Transport.
const (
	TransportWebsocket = "websocket"
	TransportNATS      = "nats"
)

// Load reads, expands and validates the configuration file.
func Load(configPath string) (*Config, error) {
	// Load .env if present; secrets like the engine token are typically
	// referenced as ${VAR} from the YAML.
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Network == "" {
		c.Network = "signet"
	}
	if c.StoragePath == "" {
		c.StoragePath = "./orange-data"
	}
	if c.Engine.Transport == "" {
		c.Engine.Transport = TransportWebsocket
	}
	if c.Engine.NATSSubject == "" {
		c.Engine.NATSSubject = "orange.events"
	}
	if c.Engine.SyncIntervalSecs <= 0 {
		c.Engine.SyncIntervalSecs = 60
	}
	if c.Daemon.AdminPort <= 0 {
		c.Daemon.AdminPort = 8935
	}
	if c.Daemon.WebhookTimeoutSecs <= 0 {
		c.Daemon.WebhookTimeoutSecs = 10
	}
}

func (c *Config) validate() error {
	switch c.Network {
	case "mainnet", "testnet", "signet", "regtest":
	default:
		return fmt.Errorf("invalid network: %s", c.Network)
	}

	if c.Engine.URL == "" {
		return fmt.Errorf("engine.url is required")
	}

	switch c.Engine.Transport {
	case TransportWebsocket:
	case TransportNATS:
		if c.Engine.NATSURL == "" {
			return fmt.Errorf("engine.nats_url is required for the nats transport")
		}
	default:
		return fmt.Errorf("unknown engine.transport: %s", c.Engine.Transport)
	}

	for i, target := range c.Webhooks {
		if !strings.HasPrefix(target.URL, "http://") && !strings.HasPrefix(target.URL, "https://") {
			return fmt.Errorf("webhooks[%d]: invalid url %q", i, target.URL)
		}
	}
	return nil
}

// EventStorePath returns the location of the event queue database.
func (c *Config) EventStorePath() string {
	return filepath.Join(c.StoragePath, "events.db")
}

func loadEnvFile() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load()
}
