// Package metrics defines and registers all custom Prometheus metrics for the
// qrnotify service. It is the single source of truth for metric names, labels,
// and help strings; metrics register with the default registry via promauto at
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qrnotify"

// RegistrationsTotal counts phone registration attempts.
// Label:
//   - result: "accepted", "invalid", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of phone registration attempts, by result.",
	},
	[]string{"result"},
)

// NotificationsTotal counts decode-and-notify pipeline invocations.
// Label:
//   - outcome: "delivered", "target_not_found", or "dispatch_failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of decode-and-notify invocations, by outcome.",
	},
	[]string{"outcome"},
)

// BotUpdatesTotal counts messaging updates consumed from the bot channel.
// Label:
//   - kind: "command", "text", "photo", "callback", "duplicate", or "other"
var BotUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bot_updates_total",
		Help:      "Total number of bot updates consumed, by update kind.",
	},
	[]string{"kind"},
)

// DecodeDuration measures how long a single QR scan takes.
// Label:
//   - result: "found" or "not_found"
var DecodeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "decode_duration_seconds",
		Help:      "Duration of QR code decoding per image.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"result"},
)
