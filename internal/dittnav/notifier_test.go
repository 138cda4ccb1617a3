package dittnav

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soknad-mottak/internal/common/config"
	"soknad-mottak/internal/common/logger"
)

type fakeProducer struct {
	err    error
	keys   []string
	values [][]byte
}

func (f *fakeProducer) ProduceRaw(_ context.Context, key string, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
	return nil
}

func testConfig() config.DittNavConfig {
	return config.DittNavConfig{
		Enabled: true,
		Link:    "https://www.nav.no/familie",
		Tekst:   "Vi har mottatt søknaden din om pleiepenger.",
	}
}

func TestVarslePublishesBeskjedKeyedByEventID(t *testing.T) {
	producer := &fakeProducer{}
	notifier := NewNotifier(producer, testConfig(), logger.NewTestLogger(t))
	frozen := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return frozen }

	notifier.Varsle(context.Background(), "soknad-1", "29099012345")

	require.Len(t, producer.values, 1)
	var beskjed Beskjed
	require.NoError(t, json.Unmarshal(producer.values[0], &beskjed))

	assert.Equal(t, producer.keys[0], beskjed.EventID)
	_, err := uuid.Parse(beskjed.EventID)
	assert.NoError(t, err)

	assert.Equal(t, "soknad-1", beskjed.GrupperingsID)
	assert.Equal(t, "29099012345", beskjed.Fodselsnummer)
	assert.Equal(t, "https://www.nav.no/familie", beskjed.Link)
	assert.Equal(t, sikkerhetsnivaa, beskjed.Sikkerhetsnivaa)
	assert.Equal(t, frozen.UnixMilli(), beskjed.Dato)
	assert.Equal(t, frozen.Add(7*24*time.Hour).UnixMilli(), beskjed.SynligFremTil)
}

func TestVarsleSwallowsProduceFailures(t *testing.T) {
	producer := &fakeProducer{err: assert.AnError}
	notifier := NewNotifier(producer, testConfig(), logger.NewTestLogger(t))

	// Must not panic or surface the error.
	notifier.Varsle(context.Background(), "soknad-1", "29099012345")

	assert.Empty(t, producer.values)
}
