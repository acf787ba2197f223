// Package metrics exposes interview and HTTP metrics to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/intervue/internal/interview"
)

const namespace = "intervue"

var phases = []interview.Phase{
	interview.PhaseIdle,
	interview.PhaseAwaitingStart,
	interview.PhaseActive,
	interview.PhaseAwaitingScore,
	interview.PhaseComplete,
	interview.PhaseSuspended,
}

// Metrics implements interview.Observer and an HTTP middleware on a
// single registry.
type Metrics struct {
	gatherer prometheus.Gatherer

	transitions *prometheus.CounterVec
	timeouts    prometheus.Counter
	phase       *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

// New registers the collectors on reg. Passing nil uses a fresh registry,
// which is what tests want.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Interview state transitions by operation and result",
		}, []string{"op", "result"}),
		timeouts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "question_timeouts_total",
			Help:      "Questions that ran out of time without an answer",
		}),
		phase: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_phase",
			Help:      "1 for the phase the session is currently in, 0 otherwise",
		}, []string{"phase"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests",
		}),
	}
}

// Transition counts one transition attempt.
func (m *Metrics) Transition(op string, err error) {
	m.transitions.WithLabelValues(op, resultLabel(err)).Inc()
	if op == interview.OpTimeout && err == nil {
		m.timeouts.Inc()
	}
}

// Phase moves the phase gauge.
func (m *Metrics) Phase(p interview.Phase) {
	for _, candidate := range phases {
		v := 0.0
		if candidate == p {
			v = 1
		}
		m.phase.WithLabelValues(candidate.String()).Set(v)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, interview.ErrValidation):
		return "validation"
	case errors.Is(err, interview.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, interview.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request metrics. Routes are labelled by their chi
// pattern, not the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		labels := prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(rec.status),
		}
		m.httpRequests.With(labels).Inc()
		m.httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler serves this registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ interview.Observer = (*Metrics)(nil)
