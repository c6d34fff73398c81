package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# orange configuration
# Values may reference environment variables as ${VAR}; a .env file next to
# the binary is loaded automatically.

network: signet
storage_path: ./orange-data

engine:
  url: https://engine.example.com:9735
  token: ${ORANGE_ENGINE_TOKEN}
  # transport: websocket | nats
  transport: websocket
  # nats_url: nats://localhost:4222
  # nats_subject: orange.events
  sync_interval_secs: 60

# Webhook targets receive every wallet event as a flat JSON POST. When at
# least one target is configured, the daemon auto-acknowledges events after
# dispatch; with none, events queue until consumed via get-event /
# event-handled.
webhooks: []
#  - url: https://example.com/hooks/wallet
#    token: ${WALLET_HOOK_TOKEN}

daemon:
  admin_port: 8935
  webhook_timeout_secs: 10
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
