// Package metrics holds the prometheus collectors shared by the bus, the
// activation subsystem and the discovery layers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	busEventsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hubd",
			Subsystem: "bus",
			Name:      "events_fired_total",
			Help:      "Total number of events fired on the bus",
		},
		[]string{"topic"},
	)

	announcements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hubd",
			Subsystem: "discovery",
			Name:      "announcements_total",
			Help:      "Discovery announcements broadcast, by kind (service|platform)",
		},
		[]string{"kind"},
	)

	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hubd",
			Subsystem: "discovery",
			Name:      "deliveries_total",
			Help:      "Discovery callbacks scheduled, by kind (service|platform)",
		},
		[]string{"kind"},
	)

	dropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hubd",
			Subsystem: "discovery",
			Name:      "dropped_total",
			Help:      "Discovery events or announcements dropped, by reason",
		},
		[]string{"reason"},
	)

	activations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hubd",
			Subsystem: "setup",
			Name:      "activations_total",
			Help:      "Component activation attempts, by outcome",
		},
		[]string{"component", "result"},
	)

	activationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hubd",
			Subsystem: "setup",
			Name:      "activation_duration_seconds",
			Help:      "Duration of component setup in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"component"},
	)
)

func init() {
	prometheus.MustRegister(busEventsFired, announcements, deliveries, dropped, activations, activationDuration)
}

// Discovery kinds.
const (
	KindService  = "service"
	KindPlatform = "platform"
)

// Drop reasons.
const (
	ReasonMalformed        = "malformed"
	ReasonActivationFailed = "activation_failed"
)

// EventFired counts one event fired on topic.
func EventFired(topic string) { busEventsFired.WithLabelValues(topic).Inc() }

// Announced counts one broadcast discovery announcement.
func Announced(kind string) { announcements.WithLabelValues(kind).Inc() }

// Delivered counts one scheduled discovery callback.
func Delivered(kind string) { deliveries.WithLabelValues(kind).Inc() }

// Dropped counts one discarded discovery event.
func Dropped(reason string) {
	if reason == "" {
		reason = "unspecified"
	}
	dropped.WithLabelValues(reason).Inc()
}

// Activation records the outcome and duration of one component setup.
func Activation(component string, ok bool, dur time.Duration) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	activations.WithLabelValues(component, result).Inc()
	activationDuration.WithLabelValues(component).Observe(dur.Seconds())
}
