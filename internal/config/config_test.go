package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
engine:
  url: https://engine.local:9735
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "signet", cfg.Network)
	assert.Equal(t, "./orange-data", cfg.StoragePath)
	assert.Equal(t, TransportWebsocket, cfg.Engine.Transport)
	assert.Equal(t, 60, cfg.Engine.SyncIntervalSecs)
	assert.Equal(t, 8935, cfg.Daemon.AdminPort)
	assert.Equal(t, 10, cfg.Daemon.WebhookTimeoutSecs)
	assert.Empty(t, cfg.Webhooks)
	assert.Equal(t, filepath.Join("./orange-data", "events.db"), cfg.EventStorePath())
}

func TestLoadParsesWebhookTargets(t *testing.T) {
	path := writeConfig(t, `
network: regtest
engine:
  url: https://engine.local:9735
webhooks:
  - url: https://hooks.example.com/wallet
    token: abc
  - url: http://localhost:9000/notify
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Webhooks, 2)
	assert.Equal(t, "https://hooks.example.com/wallet", cfg.Webhooks[0].URL)
	assert.Equal(t, "abc", cfg.Webhooks[0].Token)
	assert.Equal(t, "", cfg.Webhooks[1].Token)
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("ORANGE_TEST_TOKEN", "from-env")
	path := writeConfig(t, `
engine:
  url: https://engine.local:9735
  token: ${ORANGE_TEST_TOKEN}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Engine.Token)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"missing engine url": `network: signet`,
		"bad network": `
network: lunarnet
engine:
  url: https://engine.local:9735
`,
		"bad transport": `
engine:
  url: https://engine.local:9735
  transport: carrier-pigeon
`,
		"nats without url": `
engine:
  url: https://engine.local:9735
  transport: nats
`,
		"bad webhook url": `
engine:
  url: https://engine.local:9735
webhooks:
  - url: ftp://example.com/hook
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Init(path, false))

	// Refuses to overwrite without force.
	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "signet", cfg.Network)
}
