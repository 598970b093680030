// Package metrics holds the Prometheus collectors of the learning service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector the service records
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AuthRejections      *prometheus.CounterVec

	CompletionsRecorded  *prometheus.CounterVec
	AchievementsUnlocked *prometheus.CounterVec
	RemoteSyncFailures   *prometheus.CounterVec
	ChatRequests         *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		AuthRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of unauthorized requests",
			},
			[]string{"reason"},
		),
		CompletionsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_completions_recorded_total",
				Help: "Activity completions recorded by the progress engine",
			},
			[]string{"subject"},
		),
		AchievementsUnlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_achievements_unlocked_total",
				Help: "Achievements newly unlocked",
			},
			[]string{"achievement"},
		),
		RemoteSyncFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_remote_sync_failures_total",
				Help: "Failed calls to the remote progress backend",
			},
			[]string{"operation"},
		),
		ChatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learning_chat_requests_total",
				Help: "Tutor chat requests by outcome",
			},
			[]string{"outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequests,
			m.HTTPRequestDuration,
			m.AuthRejections,
			m.CompletionsRecorded,
			m.AchievementsUnlocked,
			m.RemoteSyncFailures,
			m.ChatRequests,
		)
	}
	return m
}
