package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
kafka:
  bootstrap_servers:
    - localhost:9092
aktoer_register:
  base_url: http://aktoerregister
k9_dokument:
  base_url: http://k9-dokument
  scopes:
    - dokument/.default
auth:
  token_endpoint: http://sts/token
  client_id: srvpps-mottak
  client_secret: secret
`

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalConfig)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "soknad-mottak", cfg.App.Name)
	assert.Equal(t, ":8082", cfg.Server.Addr)
	assert.Equal(t, "srvpps-mottak-", cfg.Kafka.ClientIDPrefix)
	assert.Equal(t, "privat-pleiepengesoknad-mottatt", cfg.Kafka.MottattTopic)
	assert.Equal(t, "privat-pleiepengesoknad-ettersending-mottatt", cfg.Kafka.EttersendingMottattTopic)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 200, cfg.Retry.InitialDelay)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFileRejectsMissingKafka(t *testing.T) {
	path := writeConfigFile(t, `
aktoer_register:
  base_url: http://aktoerregister
k9_dokument:
  base_url: http://k9-dokument
  scopes: [dokument/.default]
auth:
  token_endpoint: http://sts/token
  client_id: srvpps-mottak
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka.bootstrap_servers")
}

func TestValidateRequiresAuthSettings(t *testing.T) {
	cfg := &Config{}
	cfg.Kafka.BootstrapServers = []string{"localhost:9092"}
	cfg.Kafka.MottattTopic = "a"
	cfg.Kafka.EttersendingMottattTopic = "b"
	cfg.AktoerRegister.BaseURL = "http://aktoerregister"
	cfg.K9Dokument.BaseURL = "http://k9-dokument"
	cfg.K9Dokument.Scopes = []string{"s"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.token_endpoint")
}
