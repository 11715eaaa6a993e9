package gateway

import "github.com/prometheus/client_golang/prometheus"

var (
	uplinkEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nspanel_uplink_events_total",
			Help: "Recognized panel events, by device and event.",
		},
		[]string{"device", "event"},
	)
	hubEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nspanel_hub_events_total",
			Help: "Hub events resolved to a device.",
		},
		[]string{"device"},
	)
	droppedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nspanel_dropped_events_total",
			Help: "Messages dropped because a queue stayed full.",
		},
		[]string{"queue"},
	)
	hubSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nspanel_hub_sessions_total",
			Help: "Hub session attempts, by how they ended.",
		},
		[]string{"result"},
	)
)

func init() { prometheus.MustRegister(uplinkEvents, hubEvents, droppedEvents, hubSessions) }

const (
	queueUplink   = "uplink"
	queueDownlink = "downlink"

	sessionFailed      = "failed"
	sessionConnected   = "connected"
	sessionClosed      = "closed"
	sessionAuthInvalid = "auth_invalid"
)
