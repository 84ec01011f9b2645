package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, OutcomeOK},
		{"plain error", errors.New("boom"), OutcomeError},
		{"deadline", context.DeadlineExceeded, OutcomeTimeout},
		{"classified timeout", core.ExternalCallError("llm", context.DeadlineExceeded), OutcomeTimeout},
		{"classified failure", core.ExternalCallError("llm", errors.New("503")), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	start := time.Now()

	r.Observe("llm", "derive_facts", start, nil)
	r.Observe("llm", "derive_facts", start, nil)
	r.Observe("store", "query", start, errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.calls.WithLabelValues("llm", "derive_facts", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("store", "query", OutcomeError)))

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(r.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "factbot_external_call_duration_seconds")
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe("llm", "respond", time.Now(), nil)
	})
}
