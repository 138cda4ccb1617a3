package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus instruments for the gateway. Monitored
// operations are the downstream calls ("hente-aktoer-id", "lagre-dokument")
// and the outbound publishes.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	MessagesProduced  *prometheus.CounterVec
	SoknaderMottatt   *prometheus.CounterVec
}

// New registers the instruments on reg. Pass prometheus.DefaultRegisterer
// in main and a fresh registry in tests.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OperationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Monitored downstream operations by outcome.",
		}, []string{"operation", "status"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of monitored downstream operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		MessagesProduced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Messages produced to the outbound topics.",
		}, []string{"topic", "status"}),
		SoknaderMottatt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "soknader_mottatt_total",
			Help:      "Accepted submissions by endpoint.",
		}, []string{"endpoint"}),
	}
}

// ObserveOperation records one monitored operation.
func (m *Metrics) ObserveOperation(operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveProduced records one outbound publish attempt.
func (m *Metrics) ObserveProduced(topic, status string) {
	if m == nil {
		return
	}
	m.MessagesProduced.WithLabelValues(topic, status).Inc()
}

// ObserveMottatt records one accepted submission.
func (m *Metrics) ObserveMottatt(endpoint string) {
	if m == nil {
		return
	}
	m.SoknaderMottatt.WithLabelValues(endpoint).Inc()
}
