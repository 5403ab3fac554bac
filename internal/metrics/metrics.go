// Package metrics exposes turn and dialog activity as Prometheus
// series, wired into the bot through lifecycle hooks.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/flightdeck/adbot/pkg/domain"
)

// Metrics holds the collectors for one bot process.
type Metrics struct {
	turns        *prometheus.CounterVec
	turnErrors   prometheus.Counter
	turnDuration prometheus.Histogram
	dialogPushes *prometheus.CounterVec
	dialogPops   *prometheus.CounterVec
}

// New builds the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer for the usual /metrics exposition.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbot_turns_total",
				Help: "Total number of turns processed",
			},
			[]string{"activity_type"},
		),
		turnErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "adbot_turn_errors_total",
				Help: "Total number of turns that ended in error",
			},
		),
		turnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "adbot_turn_duration_seconds",
				Help:    "Duration of turn processing",
				Buckets: prometheus.DefBuckets,
			},
		),
		dialogPushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbot_dialog_pushes_total",
				Help: "Total number of dialogs pushed onto a stack",
			},
			[]string{"dialog_id"},
		),
		dialogPops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adbot_dialog_pops_total",
				Help: "Total number of dialogs popped off a stack",
			},
			[]string{"dialog_id"},
		),
	}
	reg.MustRegister(m.turns, m.turnErrors, m.turnDuration, m.dialogPushes, m.dialogPops)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(ctx context.Context, e *domain.TurnEvent) {
			m.turns.WithLabelValues(e.ActivityType).Inc()
			m.turnDuration.Observe(e.Duration.Seconds())
			if e.Err != nil {
				m.turnErrors.Inc()
			}
		},
		OnDialogPush: func(ctx context.Context, e *domain.DialogEvent) {
			m.dialogPushes.WithLabelValues(e.DialogID).Inc()
		},
		OnDialogPop: func(ctx context.Context, e *domain.DialogEvent) {
			m.dialogPops.WithLabelValues(e.DialogID).Inc()
		},
	}
}
