package app

import (
	"strconv"

	"github.com/jaminalder/tictactoe-rounds/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts engine activity. A nil *Metrics records nothing.
type Metrics struct {
	Transitions    *prometheus.CounterVec
	RoundsFinished *prometheus.CounterVec
	MatchesStarted prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tictactoe_transitions_total",
				Help: "Engine transitions requested, by action and whether they were applied",
			},
			[]string{"action", "applied"},
		),
		RoundsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tictactoe_rounds_finished_total",
				Help: "Rounds that reached an outcome, by outcome",
			},
			[]string{"outcome"},
		),
		MatchesStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tictactoe_matches_started_total",
				Help: "Matches that left setup",
			},
		),
	}
	reg.MustRegister(m.Transitions, m.RoundsFinished, m.MatchesStarted)
	return m
}

func (m *Metrics) transition(action string, applied bool) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action, strconv.FormatBool(applied)).Inc()
}

func (m *Metrics) roundFinished(out domain.Outcome) {
	if m == nil {
		return
	}
	label := "draw"
	if out.Kind == domain.Win {
		label = "x"
		if out.Winner == domain.O {
			label = "o"
		}
	}
	m.RoundsFinished.WithLabelValues(label).Inc()
}

func (m *Metrics) matchStarted() {
	if m == nil {
		return
	}
	m.MatchesStarted.Inc()
}
