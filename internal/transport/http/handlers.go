// Package http exposes the inbound REST surface of the gateway: the two
// submission endpoints, health probes and metrics.
package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"soknad-mottak/internal/common/errors"
	"soknad-mottak/internal/common/logger"
	"soknad-mottak/internal/kafka"
)

// maxBodyBytes caps inbound JSON bodies. Attachments are base64 inline, so
// the limit is generous.
const maxBodyBytes = 32 << 20

// Mottaker processes one raw submission and returns its id.
type Mottaker interface {
	Motta(ctx context.Context, raw []byte, metadata kafka.Metadata) (string, error)
}

// Handler serves the v1 submission endpoints.
type Handler struct {
	soknad       Mottaker
	ettersending Mottaker
	logger       logger.Logger
}

func NewHandler(soknad, ettersending Mottaker, log logger.Logger) *Handler {
	return &Handler{
		soknad:       soknad,
		ettersending: ettersending,
		logger:       log,
	}
}

// MottaSoknad handles POST /v1/soknad.
func (h *Handler) MottaSoknad(w http.ResponseWriter, r *http.Request) {
	h.motta(w, r, h.soknad)
}

// MottaEttersending handles POST /v1/ettersend.
func (h *Handler) MottaEttersending(w http.ResponseWriter, r *http.Request) {
	h.motta(w, r, h.ettersending)
}

func (h *Handler) motta(w http.ResponseWriter, r *http.Request, mottaker Mottaker) {
	ctx := r.Context()
	metadata := kafka.Metadata{
		CorrelationID: correlationID(ctx),
		RequestID:     requestID(ctx),
		Version:       kafka.SupportedVersion,
	}
	log := h.logger.WithFields(map[string]interface{}{
		"correlation_id": metadata.CorrelationID,
		"path":           r.URL.Path,
	})

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.WithError(err).Warn("Kunne ikke lese request body", nil)
		writeProblemDetails(w, entityTooLargeOrUnreadable(r))
		return
	}

	id, err := mottaker.Motta(ctx, raw, metadata)
	if err != nil {
		log.WithError(err).Warn("Mottak feilet", nil)
		writeProblem(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func entityTooLargeOrUnreadable(r *http.Request) errors.ProblemDetails {
	return errors.ProblemDetails{
		Type:     "/problem-details/unreadable-entity",
		Title:    "unreadable-entity",
		Status:   http.StatusBadRequest,
		Detail:   "Request body kunne ikke leses.",
		Instance: r.URL.Path,
	}
}
