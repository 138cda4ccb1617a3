package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soknad-mottak/internal/common/health"
)

// NewRouter wires the submission endpoints, probes and metrics. The
// correlation id requirement only applies to the submission surface;
// probes stay open for the platform.
func NewRouter(handler *Handler, healthService *health.Service, gatherer prometheus.Gatherer, authRequired bool) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(RequestID)

	r.Route("/v1", func(r chi.Router) {
		r.Use(RequireCorrelationID)
		r.Use(BearerAuth(authRequired))
		r.Post("/soknad", handler.MottaSoknad)
		r.Post("/ettersend", handler.MottaEttersending)
	})

	r.Get("/isalive", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ALIVE"))
	})
	r.Get("/isready", func(w http.ResponseWriter, req *http.Request) {
		result := healthService.Check(req.Context())
		if !result.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		result := healthService.Check(req.Context())
		w.Header().Set("Content-Type", "application/json")
		if !result.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(result)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
