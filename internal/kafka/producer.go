// internal/kafka/producer.go
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/common/health"
	"soknad-mottak/internal/common/logger"
	"soknad-mottak/internal/common/observability"
)

// SupportedVersion is the single envelope version this build produces.
const SupportedVersion = 1

// Metadata accompanies every outbound message.
type Metadata struct {
	CorrelationID string `json:"correlationId"`
	RequestID     string `json:"requestId"`
	Version       int    `json:"version"`
}

// TopicEntry is the versioned envelope written to the outbound topics.
type TopicEntry struct {
	Metadata Metadata        `json:"metadata"`
	Data     json.RawMessage `json:"data"`
}

// Producer publishes enriched submissions to one topic, keyed by soknad id
// so messages for the same submission land on the same partition in order.
type Producer struct {
	name    string
	topic   string
	client  *Client
	metrics *observability.Metrics
	logger  logger.Logger
}

func NewProducer(name, topic string, client *Client, metrics *observability.Metrics, log logger.Logger) *Producer {
	return &Producer{
		name:    name,
		topic:   topic,
		client:  client,
		metrics: metrics,
		logger:  log.WithFields(map[string]interface{}{"producer": name, "topic": topic}),
	}
}

// Produce blocks until the broker acks the record. A version mismatch is a
// programming-contract violation, never retried.
func (p *Producer) Produce(ctx context.Context, soknadID string, metadata Metadata, data json.RawMessage) error {
	if metadata.Version != SupportedVersion {
		return errors.NewConfigurationError(
			fmt.Sprintf("cannot produce with metadata version %d, this build supports version %d only",
				metadata.Version, SupportedVersion),
		)
	}

	value, err := json.Marshal(TopicEntry{Metadata: metadata, Data: data})
	if err != nil {
		return errors.NewPublishError(p.topic, err)
	}

	partition, offset, err := p.client.produceSync(ctx, p.topic, soknadID, value)
	if err != nil {
		p.metrics.ObserveProduced(p.topic, "failure")
		return errors.NewPublishError(p.topic, err)
	}
	p.metrics.ObserveProduced(p.topic, "success")

	p.logger.Info("soknad sent to topic", map[string]interface{}{
		"soknadId":  soknadID,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

// ProduceRaw publishes an arbitrary payload with an explicit key. Used for
// side-channel messages like dittnav beskjeder.
func (p *Producer) ProduceRaw(ctx context.Context, key string, value []byte) error {
	if _, _, err := p.client.produceSync(ctx, p.topic, key, value); err != nil {
		p.metrics.ObserveProduced(p.topic, "failure")
		return errors.NewPublishError(p.topic, err)
	}
	p.metrics.ObserveProduced(p.topic, "success")
	return nil
}

// Check probes the broker for topic partition metadata.
func (p *Producer) Check(ctx context.Context) health.Status {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.client.partitionsFor(ctx, p.topic); err != nil {
		p.logger.Error("kafka health probe failed", map[string]interface{}{"error": err.Error()})
		return health.UnHealthy(p.name, fmt.Sprintf("broker connection failed: %s", err))
	}
	return health.Healthy(p.name, "broker connection OK")
}
