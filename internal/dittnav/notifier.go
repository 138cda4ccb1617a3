// Package dittnav publishes best-effort user notifications about received
// soknader. A notification never affects the outcome of the submission it
// announces.
package dittnav

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"soknad-mottak/internal/common/config"
	"soknad-mottak/internal/common/logger"
)

const (
	sikkerhetsnivaa = 4
	synlighet       = 7 * 24 * time.Hour
)

// Beskjed is the notification event put on the beskjed topic.
type Beskjed struct {
	EventID         string `json:"eventId"`
	Fodselsnummer   string `json:"fodselsnummer"`
	GrupperingsID   string `json:"grupperingsId"`
	Tekst           string `json:"tekst"`
	Link            string `json:"link"`
	Sikkerhetsnivaa int    `json:"sikkerhetsnivaa"`
	Dato            int64  `json:"dato"`
	SynligFremTil   int64  `json:"synligFremTil"`
}

// RawProducer publishes a pre-serialized record keyed by the given key.
type RawProducer interface {
	ProduceRaw(ctx context.Context, key string, value []byte) error
}

// Notifier sends a beskjed for each received soknad. Send failures are
// logged and dropped.
type Notifier struct {
	producer RawProducer
	cfg      config.DittNavConfig
	logger   logger.Logger
	now      func() time.Time
}

func NewNotifier(producer RawProducer, cfg config.DittNavConfig, log logger.Logger) *Notifier {
	return &Notifier{
		producer: producer,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
}

// Varsle publishes a beskjed grouped by the soknad id. Errors are swallowed
// after logging; the submission has already been accepted at this point.
func (n *Notifier) Varsle(ctx context.Context, soknadID, fodselsnummer string) {
	now := n.now()
	beskjed := Beskjed{
		EventID:         uuid.NewString(),
		Fodselsnummer:   fodselsnummer,
		GrupperingsID:   soknadID,
		Tekst:           n.cfg.Tekst,
		Link:            n.cfg.Link,
		Sikkerhetsnivaa: sikkerhetsnivaa,
		Dato:            now.UnixMilli(),
		SynligFremTil:   now.Add(synlighet).UnixMilli(),
	}

	value, err := json.Marshal(beskjed)
	if err != nil {
		n.logger.WithError(err).Warn("Kunne ikke serialisere beskjed", map[string]interface{}{"soknad_id": soknadID})
		return
	}
	if err := n.producer.ProduceRaw(ctx, beskjed.EventID, value); err != nil {
		n.logger.WithError(err).Warn("Kunne ikke publisere beskjed", map[string]interface{}{"soknad_id": soknadID})
		return
	}
	n.logger.Debug("Beskjed publisert", map[string]interface{}{"soknad_id": soknadID, "event_id": beskjed.EventID})
}
