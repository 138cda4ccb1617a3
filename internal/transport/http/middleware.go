package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"soknad-mottak/internal/common/errors"
)

const (
	headerCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-Id"
)

type contextKey string

const (
	ctxKeyCorrelationID contextKey = "correlation-id"
	ctxKeyRequestID     contextKey = "request-id"
)

// RequireCorrelationID rejects requests without a correlation id. The id is
// propagated to every downstream call and onto the published metadata, so a
// request without one cannot be traced and is not accepted.
func RequireCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(headerCorrelationID)
		if correlationID == "" {
			writeProblemDetails(w, errors.ProblemDetails{
				Type:     "/problem-details/invalid-request-parameters",
				Title:    "invalid-request-parameters",
				Status:   http.StatusBadRequest,
				Detail:   "Requesten inneholder ugyldige parametre.",
				Instance: r.URL.Path,
				InvalidParameters: []errors.Violation{{
					ParameterName: headerCorrelationID,
					ParameterType: errors.ParameterTypeHeader,
					Reason:        "Correlation ID må settes.",
					InvalidValue:  nil,
				}},
			})
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID echoes the inbound request id, or generates one, on both the
// response and the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerAuth requires a bearer token on the request when enabled. Token
// introspection happens upstream; this only guards against unauthenticated
// direct access.
func BearerAuth(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if required {
				authorization := r.Header.Get("Authorization")
				if !strings.HasPrefix(authorization, "Bearer ") || len(authorization) <= len("Bearer ") {
					writeProblemDetails(w, errors.ProblemDetails{
						Type:     "/problem-details/unauthorized",
						Title:    "unauthorized",
						Status:   http.StatusForbidden,
						Detail:   "Requesten inneholder ikke et gyldig Bearer-token.",
						Instance: r.URL.Path,
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func correlationID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyCorrelationID).(string); ok {
		return v
	}
	return ""
}

func requestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}
