package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics counts webhook pipeline outcomes. UnknownEventType and
// dead-letter counters back the alerting required for silently acked events.
type WebhookMetrics struct {
	eventsReceived   *prometheus.CounterVec
	eventsDuplicate  prometheus.Counter
	eventsUnknown    *prometheus.CounterVec
	eventsProcessed  *prometheus.CounterVec
	eventsDeadLetter *prometheus.CounterVec
	securityAlerts   *prometheus.CounterVec
	retryAttempts    prometheus.Counter
}

var (
	webhookMetricsOnce sync.Once
	webhookMetrics     *WebhookMetrics
)

func WebhookWithConfig(cfg Config) *WebhookMetrics {
	webhookMetricsOnce.Do(func() {
		webhookMetrics = newWebhookMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return webhookMetrics
}

func newWebhookMetrics(registerer prometheus.Registerer, cfg Config) *WebhookMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "tenantflow"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	eventsReceived := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "webhook_events_received_total",
			Help:        "Signature-verified webhook events received, by event type.",
			ConstLabels: constLabels,
		},
		[]string{"event_type"},
	)
	eventsDuplicate := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "webhook_events_duplicate_total",
			Help:        "Webhook events short-circuited as already processed.",
			ConstLabels: constLabels,
		},
	)
	eventsUnknown := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "webhook_events_unknown_type_total",
			Help:        "Webhook events acknowledged without a registered handler.",
			ConstLabels: constLabels,
		},
		[]string{"event_type"},
	)
	eventsProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "webhook_events_processed_total",
			Help:        "Webhook events fully processed, by event type and outcome.",
			ConstLabels: constLabels,
		},
		[]string{"event_type", "outcome"},
	)
	eventsDeadLetter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "webhook_events_dead_letter_total",
			Help:        "Webhook events parked for manual review or replay, by error kind.",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)
	securityAlerts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "webhook_security_alerts_total",
			Help:        "Ownership and amount violations raised by reconciliation.",
			ConstLabels: constLabels,
		},
		[]string{"kind"},
	)
	retryAttempts := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "webhook_retry_attempts_total",
			Help:        "Internal processing retries across all events.",
			ConstLabels: constLabels,
		},
	)

	collectors := []prometheus.Collector{
		eventsReceived,
		eventsDuplicate,
		eventsUnknown,
		eventsProcessed,
		eventsDeadLetter,
		securityAlerts,
		retryAttempts,
	}
	for _, collector := range collectors {
		if err := registerer.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				panic(err)
			}
		}
	}

	return &WebhookMetrics{
		eventsReceived:   eventsReceived,
		eventsDuplicate:  eventsDuplicate,
		eventsUnknown:    eventsUnknown,
		eventsProcessed:  eventsProcessed,
		eventsDeadLetter: eventsDeadLetter,
		securityAlerts:   securityAlerts,
		retryAttempts:    retryAttempts,
	}
}

func (m *WebhookMetrics) EventReceived(eventType string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(eventType).Inc()
}

func (m *WebhookMetrics) EventDuplicate() {
	if m == nil {
		return
	}
	m.eventsDuplicate.Inc()
}

func (m *WebhookMetrics) EventUnknownType(eventType string) {
	if m == nil {
		return
	}
	m.eventsUnknown.WithLabelValues(eventType).Inc()
}

func (m *WebhookMetrics) EventProcessed(eventType, outcome string) {
	if m == nil {
		return
	}
	m.eventsProcessed.WithLabelValues(eventType, outcome).Inc()
}

func (m *WebhookMetrics) EventDeadLettered(kind string) {
	if m == nil {
		return
	}
	m.eventsDeadLetter.WithLabelValues(kind).Inc()
}

func (m *WebhookMetrics) SecurityAlert(kind string) {
	if m == nil {
		return
	}
	m.securityAlerts.WithLabelValues(kind).Inc()
}

func (m *WebhookMetrics) RetryAttempt() {
	if m == nil {
		return
	}
	m.retryAttempts.Inc()
}
