package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the console collectors.
type Metrics struct {
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Suggestions     *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiterm_commands_total",
				Help: "Commands executed, by outcome",
			},
			[]string{"outcome", "mode"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aiterm_command_duration_seconds",
				Help:    "Round-trip time of command executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
		Suggestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aiterm_suggestion_requests_total",
				Help: "Suggestion requests, by result",
			},
			[]string{"result"},
		),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "aiterm_active_sessions",
			Help: "Console sessions currently running",
		}),
	}
	reg.MustRegister(m.Commands, m.CommandDuration, m.Suggestions, m.ActiveSessions)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResult: func(ctx context.Context, e *domain.ResultEvent) {
			mode := "shell"
			if e.NaturalLanguage {
				mode = "natural_language"
			}
			outcome := "ok"
			switch {
			case e.Err != nil:
				outcome = "error"
			case e.ExitCode != 0:
				outcome = "exit_" + strconv.Itoa(e.ExitCode)
				if e.ExitCode > 255 || e.ExitCode < 0 {
					outcome = "exit_other"
				}
			}
			m.Commands.WithLabelValues(outcome, mode).Inc()
			m.CommandDuration.WithLabelValues(mode).Observe(e.Duration.Seconds())
		},
		OnSuggest: func(ctx context.Context, e *domain.SuggestEvent) {
			result := "ok"
			switch {
			case e.Stale:
				result = "stale"
			case e.Failed:
				result = "failed"
			}
			m.Suggestions.WithLabelValues(result).Inc()
		},
	}
}
