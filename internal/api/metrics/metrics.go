// Package metrics defines all custom Prometheus metrics for the client
// registry. It is the single source of truth for metric names, labels, and
// help strings; metrics register themselves with the default registry at
// import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "client_registry"

// ── Registration metrics ──────────────────────────────────────────────────────

// RegistrationsTotal counts successfully committed client registrations.
// Label:
//   - with_account: "oui" when a user account was created alongside, else "non"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of clients registered, by account presence.",
	},
	[]string{"with_account"},
)

// EventsPublishedTotal counts registration events handed to the bus.
var EventsPublishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of registration events published post-commit.",
	},
)

// ── Handler metrics ───────────────────────────────────────────────────────────

// HandlerFailuresTotal counts failed handler invocations.
// Label:
//   - handler: "qr_notification" or "image_upload"
var HandlerFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handler_failures_total",
		Help:      "Total number of registration handler invocations that failed.",
	},
	[]string{"handler"},
)

// HandlerDuration measures how long a single handler invocation takes.
// Label:
//   - handler: "qr_notification" or "image_upload"
var HandlerDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "handler_duration_seconds",
		Help:      "Duration of registration handler invocations from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"handler"},
)

// EventQueueDepth tracks the number of events waiting per handler queue.
// Label:
//   - handler: subscriber name
var EventQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "event_queue_depth",
		Help:      "Current number of registration events pending per handler queue.",
	},
	[]string{"handler"},
)
