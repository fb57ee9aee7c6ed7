package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/questline/pkg/domain"
)

// Metrics holds the Prometheus collectors fed by lifecycle hooks.
type Metrics struct {
	DialogsStarted    *prometheus.CounterVec
	DialogsCompleted  *prometheus.CounterVec
	Answers           *prometheus.CounterVec
	MissionsActivated *prometheus.CounterVec
	ActiveDialogs     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DialogsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_dialogs_started_total",
				Help: "Total number of dialogs started",
			},
			[]string{"mission", "trigger"},
		),
		DialogsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_dialogs_completed_total",
				Help: "Total number of dialogs completed",
			},
			[]string{"mission", "step"},
		),
		Answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_answers_total",
				Help: "Total number of answers recorded from dialogs",
			},
			[]string{"store_key", "kind"},
		),
		MissionsActivated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "questline_missions_activated_total",
				Help: "Total number of missions activated",
			},
			[]string{"mission", "deferred"},
		),
		ActiveDialogs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "questline_active_dialogs",
			Help: "Number of dialogs in progress",
		}),
	}

	for _, c := range []prometheus.Collector{m.DialogsStarted, m.DialogsCompleted, m.Answers, m.MissionsActivated, m.ActiveDialogs} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogStart: func(_ context.Context, e *domain.DialogEvent) {
			m.DialogsStarted.WithLabelValues(e.Mission, e.Trigger).Inc()
			m.ActiveDialogs.Inc()
		},
		OnDialogDone: func(_ context.Context, e *domain.DialogEvent) {
			m.DialogsCompleted.WithLabelValues(e.Mission, e.Step).Inc()
			m.ActiveDialogs.Dec()
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			m.Answers.WithLabelValues(e.StoreKey, string(e.Kind)).Inc()
		},
		OnMissionActivated: func(_ context.Context, e *domain.MissionEvent) {
			m.MissionsActivated.WithLabelValues(e.Mission, strconv.FormatBool(e.Deferred)).Inc()
		},
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
