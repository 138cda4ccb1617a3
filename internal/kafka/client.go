// internal/kafka/client.go
package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	"soknad-mottak/internal/common/config"
	"soknad-mottak/internal/common/logger"
)

// Client owns the process-wide broker connection. It is shared by every
// producer and torn down exactly once at shutdown.
type Client struct {
	kgo    *kgo.Client
	adm    *kadm.Client
	logger logger.Logger
}

func NewClient(cfg config.KafkaConfig, name string, log logger.Logger) (*Client, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.BootstrapServers...),
		kgo.ClientID(cfg.ClientIDPrefix + name),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}

	if cfg.TLS.Enabled {
		tlsCfg, err := buildTLSConfig(cfg.TLS)
		if err != nil {
			return nil, fmt.Errorf("kafka tls setup failed: %w", err)
		}
		opts = append(opts, kgo.DialTLSConfig(tlsCfg))
	}

	if cfg.SASL.Enabled {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: cfg.SASL.Username,
			Pass: cfg.SASL.Password,
		}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka client setup failed: %w", err)
	}

	return &Client{
		kgo:    client,
		adm:    kadm.NewClient(client),
		logger: log,
	}, nil
}

// produceSync sends one record and blocks until the broker acks it.
func (c *Client) produceSync(ctx context.Context, topic, key string, value []byte) (partition int32, offset int64, err error) {
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	results := c.kgo.ProduceSync(ctx, record)
	if err := results.FirstErr(); err != nil {
		return 0, 0, err
	}
	produced, err := results.First()
	if err != nil {
		return 0, 0, err
	}
	return produced.Partition, produced.Offset, nil
}

// partitionsFor queries partition metadata for topic; used by health probes.
func (c *Client) partitionsFor(ctx context.Context, topic string) error {
	details, err := c.adm.ListTopics(ctx, topic)
	if err != nil {
		return err
	}
	detail, ok := details[topic]
	if !ok {
		return fmt.Errorf("no metadata for topic '%s'", topic)
	}
	return detail.Err
}

// Stop drains in-flight records within the ctx deadline and closes the
// connection. Must be invoked exactly once during process shutdown.
func (c *Client) Stop(ctx context.Context) error {
	defer c.kgo.Close()
	if err := c.kgo.Flush(ctx); err != nil {
		return fmt.Errorf("kafka flush on shutdown failed: %w", err)
	}
	return nil
}

func buildTLSConfig(cfg config.KafkaTLSConfig) (*tls.Config, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CAPath != "" {
		caPEM, err := os.ReadFile(cfg.CAPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CAPath)
		}
		tlsCfg.RootCAs = pool
	}

	if cfg.CertPath != "" && cfg.KeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client keypair: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	return tlsCfg, nil
}
