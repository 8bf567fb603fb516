package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "allworkouts",
		Subsystem: "catalog_projector",
		Name:      "messages_processed_total",
		Help:      "Number of Kafka catalog events applied by the projector.",
	}, []string{"topic", "event_type"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "allworkouts",
		Subsystem: "catalog_projector",
		Name:      "last_message_timestamp_seconds",
		Help:      "Timestamp of the most recent catalog event processed.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(processedCounter, lastMessageGauge)
}

// RecordProcessed updates counters for successfully handled messages.
func RecordProcessed(msg Message) {
	eventType := msg.Headers["event_type"]
	processedCounter.WithLabelValues(msg.Topic, eventType).Inc()
	if !msg.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(msg.Topic).Set(float64(msg.Timestamp.Unix()))
	}
}
