// Package metrics defines the application's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Realtime subsystem metrics
var (
	// WSActiveConnections tracks currently open websocket connections
	WSActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Currently open websocket connections",
		},
	)

	// WSConnectedUsers tracks users with at least one open connection
	WSConnectedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connected_users",
			Help: "Users with at least one open websocket connection",
		},
	)

	// WSMessagesReceived tracks inbound frames by envelope type
	WSMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_messages_received_total",
			Help: "Inbound websocket frames by envelope type",
		},
		[]string{"type"},
	)

	// WSBroadcastDeliveries tracks fan-out deliveries by outcome
	WSBroadcastDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_broadcast_deliveries_total",
			Help: "Broadcast delivery attempts by status (delivered/failed)",
		},
		[]string{"status"},
	)

	// WSLivenessTimeouts tracks connections force-closed by the heartbeat monitor
	WSLivenessTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_liveness_timeouts_total",
			Help: "Connections force-closed after a missed liveness deadline",
		},
	)

	// WSAuthFailures tracks rejected websocket handshakes
	WSAuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_auth_failures_total",
			Help: "Websocket handshakes rejected for missing or invalid credentials",
		},
	)
)

// Reminder scheduler metrics
var (
	// RemindersFired tracks reminders delivered by the scheduler
	RemindersFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_fired_total",
			Help: "Due reminders pushed to clients",
		},
	)

	// ReminderScanDuration tracks due-reminder scan latency in seconds
	ReminderScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_scan_duration_seconds",
			Help:    "Due-reminder scan duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)
