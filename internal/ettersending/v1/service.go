package v1

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"soknad-mottak/internal/common/logger"
	"soknad-mottak/internal/common/observability"
	"soknad-mottak/internal/gateway/aktoer"
	"soknad-mottak/internal/gateway/dokument"
	"soknad-mottak/internal/kafka"
)

// AktoerResolver resolves a national identity number to an aktoer id.
type AktoerResolver interface {
	Resolve(ctx context.Context, identitetsnummer, correlationID string) (aktoer.AktoerID, error)
}

// DokumentLagring stores attachments and returns their URIs in input order.
type DokumentLagring interface {
	Store(ctx context.Context, dokumenter []dokument.Dokument, aktoerID aktoer.AktoerID, correlationID string) ([]string, error)
}

// Publisher puts an enriched payload on the outbound topic.
type Publisher interface {
	Produce(ctx context.Context, soknadID string, metadata kafka.Metadata, data json.RawMessage) error
}

// Service runs an ettersending through parse, validate, store and publish.
// Most ettersendinger arrive with a pre-resolved aktoer id, so identity
// resolution only happens when the payload carries a fodselsnummer alone.
type Service struct {
	resolver  AktoerResolver
	lagring   DokumentLagring
	publisher Publisher
	metrics   *observability.Metrics
	logger    logger.Logger
}

func NewService(resolver AktoerResolver, lagring DokumentLagring, publisher Publisher, metrics *observability.Metrics, log logger.Logger) *Service {
	return &Service{
		resolver:  resolver,
		lagring:   lagring,
		publisher: publisher,
		metrics:   metrics,
		logger:    log,
	}
}

// Motta processes one inbound ettersending and returns its soknad id.
func (s *Service) Motta(ctx context.Context, raw []byte, metadata kafka.Metadata) (string, error) {
	incoming, err := Parse(raw)
	if err != nil {
		return "", err
	}
	if err := Validate(incoming); err != nil {
		return "", err
	}

	soknadID := incoming.SoknadID
	if soknadID == "" {
		soknadID = uuid.NewString()
	}
	log := s.logger.WithFields(map[string]interface{}{
		"soknad_id":      soknadID,
		"correlation_id": metadata.CorrelationID,
	})

	aktoerID := aktoer.AktoerID(incoming.AktoerID)
	if aktoerID == "" {
		aktoerID, err = s.resolver.Resolve(ctx, incoming.Fodselsnummer, metadata.CorrelationID)
		if err != nil {
			return "", err
		}
	}

	urls, err := s.lagring.Store(ctx, incoming.Dokumenter(), aktoerID, metadata.CorrelationID)
	if err != nil {
		return "", err
	}
	log.Info("Vedlegg lagret", map[string]interface{}{"antall": len(urls)})

	outgoing, err := incoming.Outgoing(soknadID, aktoerID, urls)
	if err != nil {
		return "", err
	}
	data, err := outgoing.Data()
	if err != nil {
		return "", err
	}

	if err := s.publisher.Produce(ctx, soknadID, metadata, data); err != nil {
		return "", err
	}
	s.metrics.ObserveMottatt("ettersending")
	log.Info("Ettersending mottatt og publisert", nil)

	return soknadID, nil
}
