// Package metrics defines all custom Prometheus metrics for the campus
// trading API. It is the single source of truth for metric names, labels,
// and help strings. Metrics self-register with the default registry via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trading"

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly created orders.
// Label:
//   - trade_method: "face-to-face" or "campus"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by trade method.",
	},
	[]string{"trade_method"},
)

// OrderTransitionsTotal counts successful order status transitions.
// Label:
//   - transition: "pay", "ship", "receive", "cancel" or "set_status"
var OrderTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Total number of order lifecycle transitions, by transition name.",
	},
	[]string{"transition"},
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// ItemsCreatedTotal counts published listings.
// Label:
//   - category: the listing category as supplied by the seller
var ItemsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_created_total",
		Help:      "Total number of listings published, by category.",
	},
	[]string{"category"},
)

// ItemSearchesTotal counts keyword searches.
var ItemSearchesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "item_searches_total",
		Help:      "Total number of keyword searches executed.",
	},
)

// ── Account and messaging metrics ─────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of accounts registered.",
	},
)

// MessagesSentTotal counts stored chat messages.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of chat messages sent.",
	},
)
