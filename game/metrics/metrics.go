// Package metrics exposes gameplay counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects gameplay metrics on its own registry. A nil *Recorder
// discards everything.
type Recorder struct {
	registry     *prometheus.Registry
	gamesStarted *prometheus.CounterVec
	turns        *prometheus.CounterVec
	gamesWon     prometheus.Counter
	winMoves     prometheus.Histogram
	winSeconds   prometheus.Histogram
}

// NewRecorder creates a recorder. activeSessions, when non-nil, backs the
// active session gauge.
func NewRecorder(activeSessions func() int) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memorygame",
			Name:      "games_started_total",
			Help:      "Games dealt, by board size.",
		}, []string{"difficulty"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memorygame",
			Name:      "turns_total",
			Help:      "Evaluated turns, by result.",
		}, []string{"result"}),
		gamesWon: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memorygame",
			Name:      "games_won_total",
			Help:      "Games finished with every pair matched.",
		}),
		winMoves: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "memorygame",
			Name:      "win_moves",
			Help:      "Moves needed to win a game.",
			Buckets:   []float64{2, 4, 8, 12, 16, 24, 32, 48, 64, 96},
		}),
		winSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "memorygame",
			Name:      "win_seconds",
			Help:      "Session clock reading when a game was won.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 9),
		}),
	}

	r.registry.MustRegister(r.gamesStarted, r.turns, r.gamesWon, r.winMoves, r.winSeconds)

	if activeSessions != nil {
		r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "memorygame",
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}, func() float64 {
			return float64(activeSessions())
		}))
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// GameStarted counts a freshly dealt board
func (r *Recorder) GameStarted(difficulty int) {
	if r == nil {
		return
	}
	r.gamesStarted.WithLabelValues(strconv.Itoa(difficulty)).Inc()
}

// TurnEvaluated counts a revealed pair
func (r *Recorder) TurnEvaluated(matched bool) {
	if r == nil {
		return
	}
	result := "mismatch"
	if matched {
		result = "match"
	}
	r.turns.WithLabelValues(result).Inc()
}

// GameWon records a finished game
func (r *Recorder) GameWon(moves, seconds int) {
	if r == nil {
		return
	}
	r.gamesWon.Inc()
	r.winMoves.Observe(float64(moves))
	r.winSeconds.Observe(float64(seconds))
}

// Registry returns the registry the recorder's collectors live on
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the recorder's registry
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
