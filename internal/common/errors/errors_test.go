package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolutionErrorIsNotRetryable(t *testing.T) {
	err := NewResolutionError("fant 2 identer", "response body")

	assert.Equal(t, ErrCodeAktoerResolution, err.Code)
	assert.False(t, err.Retryable)
	assert.Contains(t, err.Error(), "AKTOER_RESOLUTION_FAILED")
}

func TestIsCodeMatchesWrappedErrors(t *testing.T) {
	inner := NewStorageError("lagring feilet", fmt.Errorf("boom"))
	wrapped := fmt.Errorf("pipeline: %w", inner)

	assert.True(t, IsCode(wrapped, ErrCodeDokumentStorage))
	assert.False(t, IsCode(wrapped, ErrCodePublishFailed))
}

func TestPublishErrorCarriesTopic(t *testing.T) {
	err := NewPublishError("privat-pleiepengesoknad-mottatt", fmt.Errorf("broker down"))

	assert.Equal(t, ErrCodePublishFailed, err.Code)
	assert.Contains(t, err.Message, "privat-pleiepengesoknad-mottatt")
}

func TestValidationErrorListsAllViolations(t *testing.T) {
	err := NewValidationError([]Violation{
		{ParameterName: "vedlegg", ParameterType: ParameterTypeEntity, Reason: "tomt"},
		{ParameterName: "søker.fødselsnummer", ParameterType: ParameterTypeEntity, Reason: "ugyldig"},
	})

	assert.Len(t, err.Violations, 2)
	assert.Contains(t, err.Error(), "vedlegg")
	assert.Contains(t, err.Error(), "søker.fødselsnummer")
}
