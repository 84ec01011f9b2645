package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sandevgo/factbot/internal/core"
)

const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// Recorder collects counters and latencies of calls leaving the process.
type Recorder struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factbot_external_calls_total",
			Help: "External model and store calls by outcome.",
		}, []string{"target", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factbot_external_call_duration_seconds",
			Help:    "Latency of external model and store calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"target", "op"}),
	}

	r.registry.MustRegister(r.calls, r.duration)
	r.registry.MustRegister(collectors.NewGoCollector())
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one finished call. A nil Recorder is a no-op.
func (r *Recorder) Observe(target, op string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.calls.WithLabelValues(target, op, Outcome(err)).Inc()
	r.duration.WithLabelValues(target, op).Observe(time.Since(started).Seconds())
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, core.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
