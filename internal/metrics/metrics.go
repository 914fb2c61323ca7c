// Package metrics defines the Prometheus collectors exported on /metrics.
// Everything registers with the default registry through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shop"

// HTTPRequestsTotal counts handled requests by method, route template and status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency by route template.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// CatalogMutationsTotal counts successful catalog writes.
// Label op: created, updated, deleted.
var CatalogMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_mutations_total",
		Help:      "Total number of successful product writes.",
	},
	[]string{"op"},
)

// UploadsTotal counts image uploads by result: stored, rejected, orphan_removed.
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Product image uploads by outcome.",
	},
	[]string{"result"},
)

// AuthAttemptsTotal counts login and registration attempts by outcome.
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Login and registration attempts.",
	},
	[]string{"op", "result"},
)

// CommentsBroadcastTotal counts comments fanned out to connected clients.
var CommentsBroadcastTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_broadcast_total",
		Help:      "Comments broadcast over the websocket hub.",
	},
)

// CommentClients tracks currently connected comment clients.
var CommentClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "comment_clients",
		Help:      "Connected websocket comment clients.",
	},
)
