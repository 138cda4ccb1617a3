package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/common/logger"
)

func TestProduceRejectsUnsupportedVersion(t *testing.T) {
	producer := NewProducer("test", "topic", nil, nil, logger.NewTestLogger(t))

	err := producer.Produce(context.Background(), "soknad-1", Metadata{
		CorrelationID: "corr-1",
		RequestID:     "req-1",
		Version:       2,
	}, json.RawMessage(`{}`))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
}

func TestTopicEntryEnvelopeShape(t *testing.T) {
	entry := TopicEntry{
		Metadata: Metadata{CorrelationID: "corr-1", RequestID: "req-1", Version: SupportedVersion},
		Data:     json.RawMessage(`{"søknadId": "soknad-1"}`),
	}

	raw, err := json.Marshal(entry)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"metadata": {"correlationId": "corr-1", "requestId": "req-1", "version": 1},
		"data": {"søknadId": "soknad-1"}
	}`, string(raw))
}
