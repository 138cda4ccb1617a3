// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	AktoerRegister AktoerRegisterConfig `mapstructure:"aktoer_register"`
	K9Dokument     K9DokumentConfig     `mapstructure:"k9_dokument"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Retry          RetryConfig          `mapstructure:"retry"`
	DittNav        DittNavConfig        `mapstructure:"dittnav"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // seconds
}

// KafkaConfig holds settings for the outbound producers.
type KafkaConfig struct {
	BootstrapServers []string `mapstructure:"bootstrap_servers"`
	ClientIDPrefix   string   `mapstructure:"client_id_prefix"`

	MottattTopic             string `mapstructure:"mottatt_topic"`
	EttersendingMottattTopic string `mapstructure:"ettersending_mottatt_topic"`
	BeskjedTopic             string `mapstructure:"beskjed_topic"`

	TLS  KafkaTLSConfig  `mapstructure:"tls"`
	SASL KafkaSASLConfig `mapstructure:"sasl"`
}

type KafkaTLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CAPath   string `mapstructure:"ca_path"`
	CertPath string `mapstructure:"cert_path"`
	KeyPath  string `mapstructure:"key_path"`
}

type KafkaSASLConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AktoerRegisterConfig holds settings for the identity lookup service.
type AktoerRegisterConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// K9DokumentConfig holds settings for the document store.
type K9DokumentConfig struct {
	BaseURL string   `mapstructure:"base_url"`
	Scopes  []string `mapstructure:"scopes"`
}

// AuthConfig holds the client-credentials setup for downstream calls plus
// the inbound bearer requirement.
type AuthConfig struct {
	TokenEndpoint string `mapstructure:"token_endpoint"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	Required      bool   `mapstructure:"required"`
}

// RetryConfig bounds the backoff loop around single remote calls.
type RetryConfig struct {
	MaxAttempts  int `mapstructure:"max_attempts"`
	InitialDelay int `mapstructure:"initial_delay"` // milliseconds
}

// DittNavConfig controls the best-effort "soknad mottatt" beskjed.
type DittNavConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Link    string `mapstructure:"link"`
	Tekst   string `mapstructure:"tekst"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate fails fast on configuration the gateway cannot run without.
func (c *Config) Validate() error {
	if len(c.Kafka.BootstrapServers) == 0 {
		return fmt.Errorf("kafka.bootstrap_servers is required")
	}
	if c.Kafka.MottattTopic == "" {
		return fmt.Errorf("kafka.mottatt_topic is required")
	}
	if c.Kafka.EttersendingMottattTopic == "" {
		return fmt.Errorf("kafka.ettersending_mottatt_topic is required")
	}
	if c.AktoerRegister.BaseURL == "" {
		return fmt.Errorf("aktoer_register.base_url is required")
	}
	if c.K9Dokument.BaseURL == "" {
		return fmt.Errorf("k9_dokument.base_url is required")
	}
	if len(c.K9Dokument.Scopes) == 0 {
		return fmt.Errorf("k9_dokument.scopes is required")
	}
	if c.Auth.TokenEndpoint == "" || c.Auth.ClientID == "" {
		return fmt.Errorf("auth.token_endpoint and auth.client_id are required")
	}
	return nil
}
